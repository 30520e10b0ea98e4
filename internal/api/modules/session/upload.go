package session_module

import (
	"errors"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxScreenshotSize is the largest accepted frame, in bytes
const MaxScreenshotSize = 8 * 1024 * 1024

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large - maximum 8MB allowed")
	ErrInvalidFileType = errors.New("only image uploads are allowed")
)

// validateUpload checks a screenshot before it is staged
func validateUpload(header *multipart.FileHeader) error {
	if header.Size == 0 {
		return ErrEmptyFile
	}
	if header.Size > MaxScreenshotSize {
		return ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename)))
	}

	if !strings.HasPrefix(contentType, "image/") {
		return ErrInvalidFileType
	}

	return nil
}
