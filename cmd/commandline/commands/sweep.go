package commands

import (
	"fmt"
	"time"

	"github.com/ethanbaker/snapnotes/internal/stores/staging"
	"github.com/spf13/cobra"
)

var sweepOlderThan time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove abandoned staging directories once",
	Long:  "Remove staged screenshot directories older than the retention window (STAGING_RETENTION or --older-than).",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", 0, "retention window (defaults to STAGING_RETENTION)")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	olderThan := sweepOlderThan
	if olderThan <= 0 {
		olderThan = settings.StagingRetention
	}
	if olderThan <= 0 {
		return fmt.Errorf("staging retention is disabled; set STAGING_RETENTION or pass --older-than")
	}

	store, err := staging.NewStore(settings.StorageDir, logger)
	if err != nil {
		return fmt.Errorf("open staging area: %w", err)
	}

	removed, err := store.Sweep(olderThan)
	if err != nil {
		return fmt.Errorf("sweep staging area: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d staging director%s older than %s from %s\n", removed, plural(removed, "y", "ies"), olderThan, store.Root())
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
