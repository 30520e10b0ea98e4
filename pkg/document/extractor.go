package document

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/rs/zerolog"
)

// TextExtractor pulls plain text out of an encoded document
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Options configures an Extractor. Nil collaborators fall back to the defaults.
type Options struct {
	RichText TextExtractor // docx and doc
	PDF      TextExtractor
	Logger   zerolog.Logger
}

// Extractor dispatches documents to a format-specific text extractor
type Extractor struct {
	richText TextExtractor
	pdf      TextExtractor
	logger   zerolog.Logger
}

// NewExtractor creates a document extractor
func NewExtractor(opts Options) *Extractor {
	e := &Extractor{
		richText: opts.RichText,
		pdf:      opts.PDF,
		logger:   opts.Logger,
	}

	if e.richText == nil {
		e.richText = DocxExtractor{}
	}
	if e.pdf == nil {
		e.pdf = NoopPDFExtractor{Logger: opts.Logger}
	}

	return e
}

// ExtractText returns the plain text of a document. An empty string means nothing could be extracted.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, fileName string) (string, error) {
	format, ok := FormatOf(fileName)
	if !ok {
		return "", domain.UnsupportedFormat(fmt.Sprintf("Unsupported file type: .%s. Supported: pdf, docx, doc, txt", format))
	}

	var (
		text string
		err  error
	)

	switch format {
	case FormatTXT:
		if !utf8.Valid(data) {
			e.logger.Warn().Str("file_name", fileName).Msg("text document is not valid UTF-8, replacing invalid bytes")
		}
		text = strings.ToValidUTF8(string(data), "\uFFFD")
	case FormatDOCX, FormatDOC:
		text, err = e.richText.ExtractText(ctx, data)
	case FormatPDF:
		text, err = e.pdf.ExtractText(ctx, data)
	default:
		return "", domain.UnsupportedFormat(fmt.Sprintf("Unsupported file type: .%s", format))
	}

	if err != nil {
		e.logger.Error().Err(err).Str("file_name", fileName).Msg("failed to extract text from document")
		return "", domain.ExtractionError(fmt.Sprintf("%s extraction failed", format), err)
	}

	return text, nil
}
