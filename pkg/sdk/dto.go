package sdk

import (
	"encoding/json"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/snapnotes/pkg/session"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccess(message string) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
	}
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

// NewFailResponse reports a request the client got wrong (4xx)
func NewFailResponse(code int, message string) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusFail,
		Code:    code,
		Message: message,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	if e, ok := err.(error); ok {
		err = e.Error()
	}

	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Requests */

// CreateSessionRequest represents the request body for starting a capture session
type CreateSessionRequest struct {
	UserID *string `json:"user_id,omitempty"`
}

// TextSubmitRequest represents the request body for submitting typed or pasted notes
type TextSubmitRequest struct {
	Content string `json:"content"`
}

// TranscriptSubmitRequest represents the request body for submitting an audio transcript
type TranscriptSubmitRequest struct {
	Transcript string `json:"transcript"`
}

/** Responses */

// SubmitResponse is returned when manual content has been accepted for processing
type SubmitResponse struct {
	SessionID     string `json:"session_id"`
	Message       string `json:"message"`
	ContentLength int    `json:"content_length"`
}

// SessionListItem is one entry of the session listing
type SessionListItem struct {
	session.Session
	SummaryPreview *string `json:"summary_preview,omitempty"`
}

// SessionListResponse is the body of the session listing
type SessionListResponse struct {
	Sessions []SessionListItem `json:"sessions"`
	Count    int               `json:"count"`
}
