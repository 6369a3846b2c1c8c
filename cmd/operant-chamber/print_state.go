package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/operant-chamber/internal/gpio"
	"github.com/sweeney/operant-chamber/internal/logic"
)

var printStateCmd = &cobra.Command{
	Use:   "print-state",
	Short: "Print the current input levels and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		pins, err := gpio.NewRealPins(gpio.DefaultLayout(), nil)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer pins.Close()

		in, err := pins.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatInputs(in))
		return nil
	},
}

// formatInputs describes the raw input levels. Levers idle HIGH and the lick
// circuit idles LOW.
func formatInputs(in logic.Inputs) string {
	return fmt.Sprintf("RH_LEVER: %s, LH_LEVER: %s, LICK: %s",
		leverString(in.RHLever), leverString(in.LHLever), lickString(in.Lick))
}

func leverString(high bool) string {
	if high {
		return "UP"
	}
	return "DOWN"
}

func lickString(high bool) string {
	if high {
		return "CONTACT"
	}
	return "OPEN"
}
