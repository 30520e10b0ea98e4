package session

import (
	"context"
	"errors"
)

var (
	// ErrInvalidTransition is returned when an update would regress a session's status
	ErrInvalidTransition = errors.New("invalid session status transition")

	// ErrDuplicateResult is returned when a result already exists for a session
	ErrDuplicateResult = errors.New("result already exists for session")
)

// Store defines persistence for sessions, screenshots and results.
// Lookups that find nothing return a nil value and a nil error.
type Store interface {
	InsertSession(ctx context.Context, s *Session) (*Session, error)
	UpdateSession(ctx context.Context, id string, update SessionUpdate) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, limit, offset int) ([]*Session, error)

	InsertScreenshot(ctx context.Context, shot *Screenshot) (*Screenshot, error)
	ListScreenshots(ctx context.Context, sessionID string) ([]*Screenshot, error)

	InsertResult(ctx context.Context, r *Result) (*Result, error)
	GetResult(ctx context.Context, sessionID string) (*Result, error)
}

// Staging is the local area where captured frames wait for OCR
type Staging interface {
	// ListFiles returns the staged file paths of a session in capture order (empty if none)
	ListFiles(sessionID string) ([]string, error)

	// DeleteDirectory removes the session's staged files. Failures are logged, never returned.
	DeleteDirectory(sessionID string)
}
