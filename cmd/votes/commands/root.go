package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/pkg/configutil"
	"rollcall-backend/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dbOverride *string
)

// cfg is filled in before any subcommand runs.
var cfg Config

var otelProviders telemetry.Otel

var rootCmd = &cobra.Command{
	Use:   "votes",
	Short: "votes ingests roll-call votes from howtheyvote.eu and serves them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)
		if *verbose {
			slog.DebugContext(cmd.Context(), "verbose logging enabled")
		}

		loaded, err := configutil.ReadConfig(*configPath, DefaultConfig())
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		loaded, err = configutil.Override(loaded, Config{
			Database: DatabaseConfig{File: *dbOverride},
		})
		if err != nil {
			return err
		}
		cfg = loaded

		otelProviders, err = telemetry.Setup(cmd.Context(), "votes", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := otelProviders.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, a <name>.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging.")
	dbOverride = rootCmd.PersistentFlags().String("db", "", "The sqlite database, overrides database.file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("votes failed", err)
	}
}
