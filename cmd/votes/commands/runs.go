package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit *int

func init() {
	runsLimit = runsCmd.Flags().Int("limit", 10, "The number of runs to show.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [--limit <n>]",
	Short: "Shows the most recent ingestion runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.Runs(cmd.Context(), *runsLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Run", "Started", "Finished", "Discovered", "Ingested", "Skipped", "Failed", "Interrupted"})
		for _, r := range runs {
			finished := "-"
			if r.FinishedAt != nil {
				finished = r.FinishedAt.Format(time.DateTime)
			}
			t.AppendRow(table.Row{
				r.ID,
				r.StartedAt.Format(time.DateTime),
				finished,
				r.Discovered,
				r.Ingested,
				r.Skipped,
				r.Failed,
				r.Interrupted,
			})
		}
		t.Render()
		return nil
	},
}
