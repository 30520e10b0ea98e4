package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
)

// NoopPDFExtractor accepts PDFs but extracts no text
type NoopPDFExtractor struct {
	Logger zerolog.Logger
}

// ExtractText always returns an empty string
func (n NoopPDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	n.Logger.Info().Int("bytes", len(data)).Msg("PDF received, text extraction is disabled")
	return "", nil
}

// FitzPDFExtractor extracts the text layer of every page with MuPDF
type FitzPDFExtractor struct{}

// ExtractText returns the page texts joined by blank lines
func (FitzPDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i+1, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}
