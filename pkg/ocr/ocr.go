// Package ocr turns staged screenshots into text through a lazily initialised recognition engine.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/rs/zerolog"
)

// Engine recognises the text in a single image file
type Engine interface {
	Recognize(ctx context.Context, path string) (string, error)
	Close() error
}

// EngineFactory builds the engine on first use
type EngineFactory func() (Engine, error)

// Extractor runs OCR over staged files. The engine is created once and shared by all callers.
type Extractor struct {
	once   func() (Engine, error)
	used   atomic.Bool
	logger zerolog.Logger
}

// NewExtractor creates an extractor whose engine is built by factory on first use.
// A failed initialisation is remembered and reported on every call.
func NewExtractor(factory EngineFactory, logger zerolog.Logger) *Extractor {
	return &Extractor{
		once: sync.OnceValues(func() (Engine, error) {
			if factory == nil {
				return nil, fmt.Errorf("no OCR engine configured")
			}

			engine, err := factory()
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialise OCR engine")
				return nil, err
			}
			if engine == nil {
				return nil, fmt.Errorf("OCR engine factory returned nil")
			}

			logger.Info().Msg("OCR engine initialised")
			return engine, nil
		}),
		logger: logger,
	}
}

// Helper to get the shared engine, building it on first use
func (e *Extractor) engine() (Engine, error) {
	e.used.Store(true)
	return e.once()
}

// ExtractBatch recognises each file in order and returns the non-empty texts.
// The first failure aborts the batch; later files are never attempted.
func (e *Extractor) ExtractBatch(ctx context.Context, paths []string) ([]string, error) {
	engine, err := e.engine()
	if err != nil {
		return nil, domain.OCRFailure("OCR engine unavailable", err)
	}

	texts := make([]string, 0, len(paths))
	for i, path := range paths {
		text, err := engine.Recognize(ctx, path)
		if err != nil {
			return nil, domain.OCRFailure(fmt.Sprintf("failed to recognise file %d of %d", i+1, len(paths)), err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			e.logger.Debug().Str("path", path).Msg("no text recognised")
			continue
		}
		texts = append(texts, text)
	}

	return texts, nil
}

// ExtractImage recognises a single file
func (e *Extractor) ExtractImage(ctx context.Context, path string) (string, error) {
	engine, err := e.engine()
	if err != nil {
		return "", domain.OCRFailure("OCR engine unavailable", err)
	}

	text, err := engine.Recognize(ctx, path)
	if err != nil {
		return "", domain.OCRFailure("failed to recognise image", err)
	}

	return strings.TrimSpace(text), nil
}

// Close releases the engine if it was ever created
func (e *Extractor) Close() error {
	if !e.used.Load() {
		return nil
	}

	engine, err := e.once()
	if err != nil || engine == nil {
		return nil
	}
	return engine.Close()
}
