package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/google/uuid"
)

// Helper to check and fill in a session before it is inserted
func prepareSession(s *session.Session, now time.Time) (*session.Session, error) {
	if s == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	out := s.Clone()
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.Status == "" {
		out.Status = session.StatusActive
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}

	if !out.Source.Valid() {
		return nil, fmt.Errorf("unknown session source '%s'", out.Source)
	}

	hasContent := out.ManualContent != nil && strings.TrimSpace(*out.ManualContent) != ""
	if out.Source.IsManual() != hasContent {
		return nil, fmt.Errorf("manual content must be present exactly when the source is manual (source '%s')", out.Source)
	}
	if (out.Source == session.SourceDocument) != (out.FileName != nil) {
		return nil, fmt.Errorf("file name must be present exactly when the source is a document")
	}

	return out, nil
}

// Helper to check a transition and apply an update to a copy of the session
func applyUpdate(current *session.Session, update session.SessionUpdate) (*session.Session, error) {
	out := current.Clone()

	if update.Status != nil {
		if !current.Status.CanTransitionTo(*update.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", session.ErrInvalidTransition, current.Status, *update.Status)
		}
		out.Status = *update.Status
	}
	if update.StoppedAt != nil {
		t := *update.StoppedAt
		out.StoppedAt = &t
	}

	return out, nil
}

// Helper to clamp paging parameters
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
