package commands

import (
	"context"
	"log/slog"
	"time"

	"rollcall-backend/internal/ingest"
	"rollcall-backend/pkg/configutil"
	"rollcall-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	ingestMaxPages     *int
	ingestOrder        *string
	ingestAllowRebuild *bool
)

func init() {
	ingestMaxPages = ingestCmd.Flags().Int("max-pages", 0, "The last listing page to walk, overrides source.max_pages.")
	ingestOrder = ingestCmd.Flags().String("order", "", "The order records are fetched in (asc or desc), overrides source.order.")
	ingestAllowRebuild = ingestCmd.Flags().Bool("allow-rebuild", false, "Move drifted tables aside and rebuild the schema.")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [--max-pages <n>] [--order asc|desc] [--allow-rebuild]",
	Short: "Discovers new votes and stores every one of them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		source, err := configutil.Override(cfg.Source, SourceConfig{
			MaxPages: *ingestMaxPages,
			Order:    *ingestOrder,
		})
		if err != nil {
			return err
		}

		s, err := openStore(ctx, *ingestAllowRebuild)
		if err != nil {
			return err
		}
		defer s.Close()

		pipeline, err := newPipeline(s, source)
		if err != nil {
			return err
		}

		report := pipeline.Run(ctx)
		printReport(report)
		if report.Interrupted {
			slog.Warn("ingestion was interrupted, rerun to pick up the remaining records")
		}
		return nil
	},
}

func printReport(r ingest.Report) {
	t := newTable()
	t.AppendHeader(table.Row{"Run", "Discovered", "Ingested", "Skipped", "Failed", "Took"})
	t.AppendRow(table.Row{
		r.RunID,
		r.Discovered,
		r.Ingested,
		r.Skipped,
		r.Failed,
		r.Finished.Sub(r.Started).Round(time.Millisecond),
	})
	t.Render()
}

// scheduledIngest runs the pipeline and reloads the snapshot when it stored
// anything new.
func scheduledIngest(ctx context.Context, pipeline ingest.Pipeline, reload func(context.Context) error) {
	report := pipeline.Run(ctx)
	if report.Ingested == 0 {
		return
	}
	err := reload(ctx)
	if err != nil {
		slog.Error("failed to reload snapshot after ingestion", "err", err)
		return
	}
	slog.Info("snapshot reloaded", "ingested", report.Ingested)
}
