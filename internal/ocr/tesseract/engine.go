// Package tesseract provides the production OCR engine backed by the Tesseract library.
package tesseract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognises text with a single shared Tesseract client.
// The client is not goroutine-safe, so recognitions are serialised.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a Tesseract engine for the given language (e.g. "eng")
func New(language string) (*Engine, error) {
	if language == "" {
		language = "eng"
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language '%s': %w", language, err)
	}

	return &Engine{client: client}, nil
}

// Recognize returns the text found in the image at path
func (e *Engine) Recognize(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return "", fmt.Errorf("OCR engine is closed")
	}

	if err := e.client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to load image '%s': %w", path, err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognise '%s': %w", path, err)
	}

	return text, nil
}

// Close releases the underlying Tesseract client
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return nil
	}

	err := e.client.Close()
	e.client = nil
	return err
}
