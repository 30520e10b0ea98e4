// Package document validates uploaded documents and extracts their plain text.
package document

import (
	"path/filepath"
	"strings"
)

// Format is a supported document type, keyed by file extension
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatDOC  Format = "doc"
	FormatTXT  Format = "txt"
)

// SupportedFormats lists the accepted formats in display order
var SupportedFormats = []Format{FormatPDF, FormatDOCX, FormatDOC, FormatTXT}

// FormatOf returns the format of a file name by its lowercased extension, and whether it is supported
func FormatOf(fileName string) (Format, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")

	switch f := Format(ext); f {
	case FormatPDF, FormatDOCX, FormatDOC, FormatTXT:
		return f, true
	default:
		return f, false
	}
}
