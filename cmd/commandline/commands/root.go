package commands

import (
	"github.com/ethanbaker/snapnotes/internal/bootstrap"
	"github.com/ethanbaker/snapnotes/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	settings *utils.Settings
	logger   zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "snapnotes",
	Short: "SnapNotes - study summaries and quizzes from lecture captures and notes",
	Long: `SnapNotes turns captured lecture screenshots, typed notes, transcripts and documents
into a Markdown study summary and a multiple-choice quiz.

Configuration is read from the environment and from the file named by ENV_FILE (default .env).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, logger, err = bootstrap.LoadSettings()
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
