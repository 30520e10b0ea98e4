package document

import (
	"strings"
)

// MaxDocumentSize is the largest accepted upload, in bytes
const MaxDocumentSize = 50 * 1024 * 1024

// ValidationResult reports whether a document may be processed
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Validate checks the extension and size of a document before any extraction happens
func Validate(fileName string, sizeBytes int64) ValidationResult {
	if _, ok := FormatOf(fileName); !ok {
		names := make([]string, len(SupportedFormats))
		for i, f := range SupportedFormats {
			names[i] = string(f)
		}
		return ValidationResult{Error: "Unsupported file type. Supported: " + strings.Join(names, ", ")}
	}

	if sizeBytes > MaxDocumentSize {
		return ValidationResult{Error: "File size exceeds maximum of 50MB"}
	}

	return ValidationResult{Valid: true}
}
