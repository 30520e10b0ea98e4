package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethanbaker/snapnotes/internal/bootstrap"
	"github.com/ethanbaker/snapnotes/internal/observability"
	"github.com/ethanbaker/snapnotes/internal/ocr/tesseract"
	"github.com/ethanbaker/snapnotes/pkg/document"
	"github.com/ethanbaker/snapnotes/pkg/ocr"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/spf13/cobra"
)

var (
	summarizeImage   bool
	summarizeTimeout time.Duration
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize a document or screenshot locally and print Markdown",
	Long: `Extract the text of a document (pdf, docx, doc, txt) or, with --image, recognise the
text of a screenshot, then generate a study summary and quiz without a server.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeImage, "image", false, "treat the file as a screenshot and run OCR")
	summarizeCmd.Flags().DurationVar(&summarizeTimeout, "timeout", 5*time.Minute, "overall time limit")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, summarizeTimeout)
	defer cancel()

	path := args[0]

	var (
		text string
		err  error
	)
	if summarizeImage {
		text, err = recognizeImage(ctx, path)
	} else {
		text, err = extractDocument(ctx, path)
	}
	if err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no text could be extracted from %s", filepath.Base(path))
	}

	generator, err := bootstrap.NewGenerator(settings, observability.Component(logger, "ai"), nil)
	if err != nil {
		return err
	}

	summary, err := generator.GenerateSummary(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("generate summary: %w", err)
	}

	var quiz []session.QuizQuestion
	if strings.TrimSpace(summary) != "" {
		quiz = generator.GenerateQuiz(ctx, summary)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderMarkdown(summary, quiz))
	return nil
}

// Helper to validate and extract a document from disk
func extractDocument(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if result := document.Validate(path, info.Size()); !result.Valid {
		return "", fmt.Errorf("%s", result.Error)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	extractor := bootstrap.NewDocumentExtractor(settings, observability.Component(logger, "document"))
	return extractor.ExtractText(ctx, data, filepath.Base(path))
}

// Helper to run OCR over a single screenshot
func recognizeImage(ctx context.Context, path string) (string, error) {
	extractor := ocr.NewExtractor(func() (ocr.Engine, error) {
		return tesseract.New(settings.OCRLanguage)
	}, observability.Component(logger, "ocr"))
	defer extractor.Close()

	return extractor.ExtractImage(ctx, path)
}
