// Package pipeline turns a stopped or submitted session into a stored summary and quiz.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
)

// TextRecognizer extracts text from staged files, dropping empty outputs
type TextRecognizer interface {
	ExtractBatch(ctx context.Context, paths []string) ([]string, error)
}

// ContentGenerator writes the summary and quiz of a session
type ContentGenerator interface {
	GenerateSummary(ctx context.Context, segments []string) (string, error)
	GenerateQuiz(ctx context.Context, summary string) []session.QuizQuestion
}

// Options configures an Orchestrator
type Options struct {
	Store     session.Store
	Staging   session.Staging
	OCR       TextRecognizer
	Generator ContentGenerator
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Orchestrator runs the session pipeline
type Orchestrator struct {
	store     session.Store
	staging   session.Staging
	resolver  *Resolver
	ocr       TextRecognizer
	generator ContentGenerator
	logger    zerolog.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("a valid store must be provided")
	}
	if opts.Staging == nil {
		return nil, fmt.Errorf("a valid staging area must be provided")
	}
	if opts.OCR == nil {
		return nil, fmt.Errorf("a valid OCR extractor must be provided")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("a valid generator must be provided")
	}

	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Orchestrator{
		store:     opts.Store,
		staging:   opts.Staging,
		resolver:  NewResolver(opts.Store, opts.Staging),
		ocr:       opts.OCR,
		generator: opts.Generator,
		logger:    opts.Logger,
		now:       now,
	}, nil
}

// Run processes a session to a terminal status. A failure marks the session failed
// and is returned for synchronous callers.
func (o *Orchestrator) Run(ctx context.Context, sessionID string) error {
	logger := o.logger.With().Str("session_id", sessionID).Logger()
	started := o.now()

	content, err := o.process(ctx, sessionID, logger)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(domain.KindOf(err))).Msg("session pipeline failed")
		o.markFailed(ctx, sessionID, logger)
		return err
	}

	if err := o.setStatus(ctx, sessionID, session.StatusCompleted); err != nil {
		logger.Error().Err(err).Msg("failed to mark session completed")
		return err
	}

	logger.Info().Dur("elapsed", o.now().Sub(started)).Msg("session pipeline complete")

	if content.IsCapture() {
		o.staging.DeleteDirectory(sessionID)
	}

	return nil
}

// RunAsync starts Run in the background with its own context. Errors and panics are logged,
// never propagated to the caller.
func (o *Orchestrator) RunAsync(sessionID string) {
	o.wg.Add(1)

	go func() {
		defer o.wg.Done()

		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				logger := o.logger.With().Str("session_id", sessionID).Logger()
				logger.Error().Interface("panic", r).Msg("session pipeline panicked")
				o.markFailed(ctx, sessionID, logger)
			}
		}()

		_ = o.Run(ctx, sessionID)
	}()
}

// Wait blocks until every background run has finished
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Helper to run steps 1-5: resolve, recognise, summarise, quiz, persist
func (o *Orchestrator) process(ctx context.Context, sessionID string, logger zerolog.Logger) (Content, error) {
	content, err := o.resolver.Resolve(ctx, sessionID)
	if err != nil {
		return Content{}, err
	}

	var segments []string
	switch {
	case content.IsCapture():
		if len(content.Files) == 0 {
			return content, domain.NoContentAvailable("no screenshots available to process")
		}

		logger.Info().Int("file_count", len(content.Files)).Msg("starting OCR processing")
		segments, err = o.ocr.ExtractBatch(ctx, content.Files)
		if err != nil {
			return content, err
		}
		logger.Info().Int("snippet_count", len(segments)).Msg("OCR complete")

		if len(segments) == 0 {
			return content, domain.NoContentAvailable("no readable text could be extracted from the captured screenshots")
		}
	default:
		segments = []string{content.Text}
	}

	summary, err := o.generator.GenerateSummary(ctx, segments)
	if err != nil {
		return content, err
	}
	logger.Info().Int("summary_length", len(summary)).Msg("summary generated")

	quiz := []session.QuizQuestion{}
	if strings.TrimSpace(summary) != "" {
		quiz = o.generator.GenerateQuiz(ctx, summary)
	}
	logger.Info().Int("quiz_count", len(quiz)).Msg("quiz generated")

	if _, err := o.store.InsertResult(ctx, &session.Result{
		SessionID: sessionID,
		Summary:   summary,
		Quiz:      quiz,
		CreatedAt: o.now(),
	}); err != nil {
		return content, fmt.Errorf("failed to insert result: %w", err)
	}

	return content, nil
}

// Helper to move a session to a new status
func (o *Orchestrator) setStatus(ctx context.Context, sessionID string, status session.Status) error {
	updated, err := o.store.UpdateSession(ctx, sessionID, session.SessionUpdate{Status: &status})
	if err != nil {
		return err
	}
	if updated == nil {
		return domain.ContentNotFound(fmt.Sprintf("session '%s' not found", sessionID), nil)
	}
	return nil
}

// Helper to mark a session failed; a secondary failure is logged and swallowed
func (o *Orchestrator) markFailed(ctx context.Context, sessionID string, logger zerolog.Logger) {
	if err := o.setStatus(ctx, sessionID, session.StatusFailed); err != nil {
		logger.Error().Err(err).Msg("failed to mark session failed")
	}
}
