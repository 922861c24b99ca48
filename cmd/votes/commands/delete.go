package commands

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <vote id>",
	Short: "Deletes a stored vote so the next ingestion fetches it again.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid vote id %q: %w", args[0], err)
		}

		s, err := openStore(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.DeleteVote(cmd.Context(), id)
		if err != nil {
			return err
		}
		slog.Info("deleted vote", "id", id)
		return nil
	},
}
