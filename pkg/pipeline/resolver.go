package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
)

// Content is the input of a pipeline run. Capture sessions carry Files, manual sessions carry Text.
type Content struct {
	Source session.Source
	Text   string
	Files  []string
}

// IsCapture reports whether the content came from captured frames
func (c Content) IsCapture() bool {
	return c.Source == session.SourceCapture
}

// Resolver finds the content of a session without modifying it
type Resolver struct {
	store   session.Store
	staging session.Staging
}

// NewResolver creates a new content resolver
func NewResolver(store session.Store, staging session.Staging) *Resolver {
	return &Resolver{
		store:   store,
		staging: staging,
	}
}

// Resolve returns the trimmed manual content of a manual session, or the staged files of a capture session
func (r *Resolver) Resolve(ctx context.Context, sessionID string) (Content, error) {
	s, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return Content{}, err
	}
	if s == nil {
		return Content{}, domain.ContentNotFound(fmt.Sprintf("session '%s' not found", sessionID), nil)
	}

	switch s.Source {
	case session.SourceText, session.SourceAudioTranscript, session.SourceDocument:
		if s.ManualContent == nil {
			return Content{}, domain.ContentNotFound("no manual content found for this session", nil)
		}
		text := strings.TrimSpace(*s.ManualContent)
		if text == "" {
			return Content{}, domain.ContentNotFound("manual content is empty", nil)
		}
		return Content{Source: s.Source, Text: text}, nil

	case session.SourceCapture:
		files, err := r.staging.ListFiles(sessionID)
		if err != nil {
			return Content{}, fmt.Errorf("failed to list staged files: %w", err)
		}
		return Content{Source: s.Source, Files: files}, nil

	default:
		return Content{}, domain.ContentNotFound(fmt.Sprintf("unknown session source '%s'", s.Source), nil)
	}
}
