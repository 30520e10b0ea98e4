package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethanbaker/snapnotes/pkg/document"
	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
)

// MaxManualContentLength is the largest accepted manual submission, in characters
const MaxManualContentLength = 1_000_000

// SummaryPreviewLength is the number of summary characters shown in session listings
const SummaryPreviewLength = 150

// DefaultUploadURLPrefix is where staged frames are served from
const DefaultUploadURLPrefix = "/uploads"

// ErrSessionNotFound is returned when an operation targets an unknown session
var ErrSessionNotFound = errors.New("session not found")

// Dispatcher starts a pipeline run without waiting for it
type Dispatcher interface {
	RunAsync(sessionID string)
}

// FrameSaver stages uploaded frames for OCR
type FrameSaver interface {
	Save(sessionID, originalName string, r io.Reader) (string, error)
}

// DocumentExtractor pulls plain text out of an uploaded document
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte, fileName string) (string, error)
}

// ServiceOptions configures a Service
type ServiceOptions struct {
	Store           session.Store
	Frames          FrameSaver
	Documents       DocumentExtractor
	Dispatcher      Dispatcher
	UploadURLPrefix string
	Logger          zerolog.Logger
	Now             func() time.Time
}

// Service implements the session operations exposed to clients. It is the only caller of Dispatcher.
type Service struct {
	store      session.Store
	frames     FrameSaver
	documents  DocumentExtractor
	dispatcher Dispatcher
	urlPrefix  string
	logger     zerolog.Logger
	now        func() time.Time
}

// ManualInput is user-supplied content that skips screen capture
type ManualInput struct {
	Content  string
	Source   session.Source
	FileName string
}

// SessionSummary is a session listing entry
type SessionSummary struct {
	*session.Session
	SummaryPreview *string `json:"summary_preview"`
}

// NewService creates a new session service
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("a valid store must be provided")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("a valid dispatcher must be provided")
	}

	s := &Service{
		store:      opts.Store,
		frames:     opts.Frames,
		documents:  opts.Documents,
		dispatcher: opts.Dispatcher,
		urlPrefix:  strings.TrimRight(opts.UploadURLPrefix, "/"),
		logger:     opts.Logger,
		now:        opts.Now,
	}

	if s.urlPrefix == "" {
		s.urlPrefix = DefaultUploadURLPrefix
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}

	return s, nil
}

// CreateCaptureSession starts a new capture session in the active state
func (s *Service) CreateCaptureSession(ctx context.Context, userID *string) (*session.Session, error) {
	if userID != nil && strings.TrimSpace(*userID) == "" {
		userID = nil
	}

	created, err := s.store.InsertSession(ctx, &session.Session{
		UserID:    userID,
		Status:    session.StatusActive,
		Source:    session.SourceCapture,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Str("session_id", created.ID).Msg("capture session created")
	return created, nil
}

// StopSession ends capture and starts processing. Only active sessions can be stopped.
func (s *Service) StopSession(ctx context.Context, sessionID string) (*session.Session, error) {
	current, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrSessionNotFound
	}
	if current.Status != session.StatusActive {
		return nil, fmt.Errorf("%w: session is %s", session.ErrInvalidTransition, current.Status)
	}

	status := session.StatusProcessing
	stoppedAt := s.now()
	updated, err := s.store.UpdateSession(ctx, sessionID, session.SessionUpdate{
		Status:    &status,
		StoppedAt: &stoppedAt,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	s.dispatcher.RunAsync(sessionID)
	s.logger.Info().Str("session_id", sessionID).Msg("capture session stopped, processing started")

	return updated, nil
}

// SubmitManual creates a processing session from user content and starts the pipeline
func (s *Service) SubmitManual(ctx context.Context, in ManualInput) (*session.Session, error) {
	if !in.Source.IsManual() {
		return nil, domain.ValidationError(fmt.Sprintf("source '%s' is not a manual input source", in.Source))
	}

	label := "Content"
	if in.Source == session.SourceAudioTranscript {
		label = "Transcript"
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.ValidationError(label + " cannot be empty")
	}
	if utf8.RuneCountInString(in.Content) > MaxManualContentLength {
		return nil, domain.ValidationError(label + " exceeds maximum length (1MB)")
	}

	var fileName *string
	if in.Source == session.SourceDocument {
		if in.FileName == "" {
			return nil, domain.ValidationError("file name is required for document submissions")
		}
		name := in.FileName
		fileName = &name
	}

	now := s.now()
	created, err := s.store.InsertSession(ctx, &session.Session{
		Status:        session.StatusProcessing,
		Source:        in.Source,
		ManualContent: &content,
		FileName:      fileName,
		CreatedAt:     now,
		StoppedAt:     &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create manual session: %w", err)
	}

	s.dispatcher.RunAsync(created.ID)
	s.logger.Info().
		Str("session_id", created.ID).
		Str("source", string(in.Source)).
		Int("content_length", len(content)).
		Msg("manual session submitted")

	return created, nil
}

// SubmitDocument validates and extracts a document, then submits its text.
// Rejected documents never create a session.
func (s *Service) SubmitDocument(ctx context.Context, fileName string, data []byte) (*session.Session, int, error) {
	if s.documents == nil {
		return nil, 0, fmt.Errorf("document extraction is not configured")
	}

	if result := document.Validate(fileName, int64(len(data))); !result.Valid {
		return nil, 0, domain.ValidationError(result.Error)
	}

	text, err := s.documents.ExtractText(ctx, data, fileName)
	if err != nil {
		if domain.IsKind(err, domain.KindUnsupportedFormat) {
			return nil, 0, err
		}
		return nil, 0, domain.NewError(domain.KindValidation, "Failed to extract text from document. File may be corrupted or unsupported.", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, domain.ValidationError("No text could be extracted from document")
	}

	created, err := s.SubmitManual(ctx, ManualInput{
		Content:  text,
		Source:   session.SourceDocument,
		FileName: fileName,
	})
	if err != nil {
		return nil, 0, err
	}

	return created, utf8.RuneCountInString(text), nil
}

// UploadScreenshot stages a captured frame and records it against an active session
func (s *Service) UploadScreenshot(ctx context.Context, sessionID, originalName string, r io.Reader) (*session.Screenshot, error) {
	if s.frames == nil {
		return nil, fmt.Errorf("screenshot staging is not configured")
	}

	current, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrSessionNotFound
	}
	if current.Source != session.SourceCapture {
		return nil, domain.ValidationError("screenshots can only be uploaded to capture sessions")
	}
	if current.Status != session.StatusActive {
		return nil, fmt.Errorf("%w: session is %s", session.ErrInvalidTransition, current.Status)
	}

	stagedPath, err := s.frames.Save(sessionID, originalName, r)
	if err != nil {
		return nil, fmt.Errorf("failed to stage screenshot: %w", err)
	}

	shot, err := s.store.InsertScreenshot(ctx, &session.Screenshot{
		SessionID: sessionID,
		ImageURL:  path.Join(s.urlPrefix, sessionID, filepath.Base(stagedPath)),
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record screenshot: %w", err)
	}

	s.logger.Debug().Str("session_id", sessionID).Str("path", stagedPath).Msg("screenshot staged for OCR")
	return shot, nil
}

// GetSession returns a session, or ErrSessionNotFound
func (s *Service) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	found, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrSessionNotFound
	}
	return found, nil
}

// GetResult returns a session's result, or nil while it is not ready
func (s *Service) GetResult(ctx context.Context, sessionID string) (*session.Result, error) {
	return s.store.GetResult(ctx, sessionID)
}

// ListScreenshots returns a session's frames oldest first
func (s *Service) ListScreenshots(ctx context.Context, sessionID string) ([]*session.Screenshot, error) {
	return s.store.ListScreenshots(ctx, sessionID)
}

// ListSessions returns sessions newest first with a short preview of each summary
func (s *Service) ListSessions(ctx context.Context, limit, offset int) ([]SessionSummary, error) {
	sessions, err := s.store.ListSessions(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		entry := SessionSummary{Session: sess}

		result, err := s.store.GetResult(ctx, sess.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to load result for preview")
		} else if result != nil && result.Summary != "" {
			preview := Preview(result.Summary, SummaryPreviewLength)
			entry.SummaryPreview = &preview
		}

		out = append(out, entry)
	}

	return out, nil
}

// Preview returns the first n characters of text followed by "..."
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
