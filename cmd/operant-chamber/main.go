// Command operant-chamber drives an operant conditioning chamber from GPIO,
// logging behavioral records to stdout, MQTT and a local archive.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "operant-chamber",
	Short: "Operant chamber controller",
	Long:  `operant-chamber runs FR, PR and VI reinforcement sessions on a GPIO-wired chamber and reports every lever press, lick, infusion and stimulation.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	chamberName string
	dbPath      string
)

func init() {
	homeDir, _ := os.UserHomeDir()
	defaultDB := filepath.Join(homeDir, ".operant", "chamber.db")

	rootCmd.PersistentFlags().StringVar(&chamberName, "chamber", "box1", "Chamber name used in MQTT topics and the archive")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Path to SQLite archive (empty to disable)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(printStateCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
