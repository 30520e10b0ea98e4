package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised while ingesting and processing a session
type ErrorKind string

const (
	KindContentNotFound     ErrorKind = "content_not_found"
	KindNoContentAvailable  ErrorKind = "no_content_available"
	KindOCRFailure          ErrorKind = "ocr_failure"
	KindAIGenerationFailure ErrorKind = "ai_generation_failure"
	KindUnsupportedFormat   ErrorKind = "unsupported_format"
	KindExtraction          ErrorKind = "extraction"
	KindValidation          ErrorKind = "validation"
	KindStoreFailure        ErrorKind = "store_failure"
)

// Error is a classified error with an optional underlying cause
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new classified error
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first classified error in the chain, or "" if none
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether any error in the chain has the given kind
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Kind == kind {
			return true
		}
		err = de.Err
	}
	return false
}

// Common error constructors
func ContentNotFound(message string, err error) *Error {
	return NewError(KindContentNotFound, message, err)
}

func NoContentAvailable(message string) *Error {
	return NewError(KindNoContentAvailable, message, nil)
}

func OCRFailure(message string, err error) *Error {
	return NewError(KindOCRFailure, message, err)
}

func AIGenerationFailure(message string, err error) *Error {
	return NewError(KindAIGenerationFailure, message, err)
}

func UnsupportedFormat(message string) *Error {
	return NewError(KindUnsupportedFormat, message, nil)
}

func ExtractionError(message string, err error) *Error {
	return NewError(KindExtraction, message, err)
}

func ValidationError(message string) *Error {
	return NewError(KindValidation, message, nil)
}

func StoreFailure(message string, err error) *Error {
	return NewError(KindStoreFailure, message, err)
}
