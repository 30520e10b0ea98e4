package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanbaker/snapnotes/internal/bootstrap"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return bootstrap.Serve(ctx, settings, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
