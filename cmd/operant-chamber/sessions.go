package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/operant-chamber/internal/store"
)

var (
	sessionsAll bool
	sessionID   string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List archived sessions",
	Long:  `Lists the sessions recorded in the archive, newest first. With --id, prints the record lines of one session.`,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsAll, "all", false, "List sessions of every chamber")
	sessionsCmd.Flags().StringVar(&sessionID, "id", "", "Print the records of this session")
}

func runSessions(cmd *cobra.Command, args []string) error {
	if dbPath == "" {
		return fmt.Errorf("no archive configured (--db is empty)")
	}
	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	if sessionID != "" {
		recs, err := s.Records(sessionID)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Fprintln(out, r.Line)
		}
		return nil
	}

	chamber := chamberName
	if sessionsAll {
		chamber = ""
	}
	sessions, err := s.ListSessions(chamber)
	if err != nil {
		return err
	}
	return printSessions(out, sessions)
}

func printSessions(w io.Writer, sessions []store.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHAMBER\tPARADIGM\tRATIO\tSTARTED\tDURATION\tRECORDS")
	for _, sess := range sessions {
		duration := "running"
		if sess.EndedAt != nil {
			duration = sess.EndedAt.Sub(sess.StartedAt).Truncate(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			sess.ID, sess.Chamber, sess.Paradigm, sess.Ratio,
			sess.StartedAt.Local().Format("2006-01-02 15:04:05"), duration, sess.Records)
	}
	return tw.Flush()
}
