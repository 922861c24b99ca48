package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateAllowRebuild *bool

func init() {
	migrateAllowRebuild = migrateCmd.Flags().Bool("allow-rebuild", false, "Move drifted tables aside and rebuild the schema.")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [--allow-rebuild]",
	Short: "Brings the database schema up to date.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context(), *migrateAllowRebuild)
		if err != nil {
			return err
		}
		defer s.Close()

		version, err := s.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		count, err := s.CountVotes(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("schema is up to date", "file", cfg.Database.File, "version", version, "votes", count)
		return nil
	},
}
