package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanbaker/snapnotes/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	waitServer   string
	waitInterval time.Duration
	waitTimeout  time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait <sessionId>",
	Short: "Wait for a session on a running server and print its results",
	Args:  cobra.ExactArgs(1),
	RunE:  runWait,
}

func init() {
	waitCmd.Flags().StringVar(&waitServer, "server", "", "server base URL (defaults to http://localhost:$API_PORT)")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", 2*time.Second, "polling interval")
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 5*time.Minute, "give up after this long")
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	server := waitServer
	if server == "" {
		server = "http://localhost:" + settings.APIPort
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := sdk.NewClient(server, settings.APIKey)
	result, err := client.WaitForResult(ctx, args[0], waitInterval, waitTimeout)
	if err != nil {
		return fmt.Errorf("wait for session %s: %w", args[0], err)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(result.Summary, result.Quiz))
	return nil
}
