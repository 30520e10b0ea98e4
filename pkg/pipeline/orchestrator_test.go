package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ethanbaker/snapnotes/pkg/ai"
	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrchestrator_RequiresDependencies(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, nil)

	base := Options{Store: f.store, Staging: f.staging, OCR: &countingRecognizer{}, Generator: f.generator}

	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"store", func(o *Options) { o.Store = nil }},
		{"staging", func(o *Options) { o.Staging = nil }},
		{"ocr", func(o *Options) { o.OCR = nil }},
		{"generator", func(o *Options) { o.Generator = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			_, err := NewOrchestrator(opts)
			assert.Error(t, err)
		})
	}
}

func TestOrchestrator_ManualText(t *testing.T) {
	completer := &scriptedCompleter{summary: "# Photosynthesis\nLight becomes chemical energy.", quiz: sampleQuizJSON}
	f := newFixture(t, &orderedEngine{}, completer)
	s := f.newManualSession(t, session.SourceText, "Photosynthesis converts light into chemical energy.")

	require.NoError(t, f.orch.Run(context.Background(), s.ID))

	assert.Equal(t, session.StatusCompleted, f.status(t, s.ID))
	assert.Zero(t, f.engine.calls)
	assert.Zero(t, f.builds)

	result, err := f.store.GetResult(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "# Photosynthesis\nLight becomes chemical energy.", result.Summary)
	assert.Len(t, result.Quiz, 2)
	assert.LessOrEqual(t, len(result.Quiz), ai.MaxQuizQuestions)
	for _, q := range result.Quiz {
		assert.NoError(t, q.Validate())
	}

	turns := completer.userTurns()
	require.Len(t, turns, 2)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", turns[0])
	assert.Equal(t, ai.DefaultQuizUserPrefix+result.Summary, turns[1])
}

func TestOrchestrator_CaptureDropsEmptyFrames(t *testing.T) {
	completer := &scriptedCompleter{summary: "Slide summary", quiz: sampleQuizJSON}
	engine := &orderedEngine{outputs: []string{"Lecture slide 1 text", "   "}}
	f := newFixture(t, engine, completer)
	s := f.newCaptureSession(t, 2)

	require.NoError(t, f.orch.Run(context.Background(), s.ID))

	assert.Equal(t, session.StatusCompleted, f.status(t, s.ID))
	assert.Equal(t, 2, engine.calls)
	assert.Equal(t, 1, f.builds)

	turns := completer.userTurns()
	require.NotEmpty(t, turns)
	assert.Equal(t, "Lecture slide 1 text", turns[0])

	result, err := f.store.GetResult(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Slide summary", result.Summary)

	assert.False(t, f.stagedDirExists(s.ID))
}

func TestOrchestrator_OCRFailureAbortsRun(t *testing.T) {
	completer := &scriptedCompleter{summary: "unused", quiz: sampleQuizJSON}
	engine := &orderedEngine{outputs: []string{"a", "b", "c"}, failAt: 1}
	f := newFixture(t, engine, completer)
	s := f.newCaptureSession(t, 3)

	err := f.orch.Run(context.Background(), s.ID)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindOCRFailure))

	assert.Equal(t, session.StatusFailed, f.status(t, s.ID))
	assert.Equal(t, 1, engine.calls)
	assert.Empty(t, completer.userTurns())

	result, err := f.store.GetResult(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, result)

	files, err := f.staging.ListFiles(s.ID)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestOrchestrator_CaptureWithoutFrames(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, &scriptedCompleter{summary: "x"})
	s := f.newCaptureSession(t, 0)

	err := f.orch.Run(context.Background(), s.ID)
	assert.True(t, domain.IsKind(err, domain.KindNoContentAvailable))
	assert.Equal(t, session.StatusFailed, f.status(t, s.ID))
	assert.Zero(t, f.builds)
}

func TestOrchestrator_CaptureWithOnlyBlankFrames(t *testing.T) {
	f := newFixture(t, &orderedEngine{outputs: []string{"", "\n"}}, &scriptedCompleter{summary: "x"})
	s := f.newCaptureSession(t, 2)

	err := f.orch.Run(context.Background(), s.ID)
	assert.True(t, domain.IsKind(err, domain.KindNoContentAvailable))
	assert.Equal(t, session.StatusFailed, f.status(t, s.ID))
	assert.True(t, f.stagedDirExists(s.ID))
}

func TestOrchestrator_WithoutModel(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, nil)
	s := f.newManualSession(t, session.SourceAudioTranscript, "Today we covered mitosis.")

	require.NoError(t, f.orch.Run(context.Background(), s.ID))
	assert.Equal(t, session.StatusCompleted, f.status(t, s.ID))

	result, err := f.store.GetResult(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, ai.PlaceholderNotConfigured, result.Summary)
	assert.NotNil(t, result.Quiz)
	assert.Empty(t, result.Quiz)
}

func TestOrchestrator_SummaryFailure(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("upstream 503")}
	f := newFixture(t, &orderedEngine{}, completer)
	s := f.newManualSession(t, session.SourceText, "content")

	err := f.orch.Run(context.Background(), s.ID)
	assert.True(t, domain.IsKind(err, domain.KindAIGenerationFailure))
	assert.Equal(t, session.StatusFailed, f.status(t, s.ID))

	result, err := f.store.GetResult(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestOrchestrator_MissingSession(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, nil)

	err := f.orch.Run(context.Background(), "missing")
	assert.True(t, domain.IsKind(err, domain.KindContentNotFound))
}

func TestOrchestrator_ResultAlreadyStored(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, nil)
	s := f.newManualSession(t, session.SourceText, "content")

	_, err := f.store.InsertResult(context.Background(), &session.Result{SessionID: s.ID, Summary: "earlier", Quiz: []session.QuizQuestion{}})
	require.NoError(t, err)

	err = f.orch.Run(context.Background(), s.ID)
	assert.ErrorIs(t, err, session.ErrDuplicateResult)
	assert.Equal(t, session.StatusFailed, f.status(t, s.ID))
}

// panickingGenerator blows up during summarisation
type panickingGenerator struct{}

func (panickingGenerator) GenerateSummary(ctx context.Context, segments []string) (string, error) {
	panic("model client exploded")
}

func (panickingGenerator) GenerateQuiz(ctx context.Context, summary string) []session.QuizQuestion {
	return nil
}

// countingRecognizer records how often it is asked for text
type countingRecognizer struct {
	calls int
}

func (r *countingRecognizer) ExtractBatch(ctx context.Context, paths []string) ([]string, error) {
	r.calls++
	return paths, nil
}

func TestOrchestrator_RunAsync(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, &scriptedCompleter{summary: "Summary", quiz: sampleQuizJSON})

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = f.newManualSession(t, session.SourceText, "content").ID
	}

	for _, id := range ids {
		f.orch.RunAsync(id)
	}
	f.orch.Wait()

	for _, id := range ids {
		assert.Equal(t, session.StatusCompleted, f.status(t, id))
	}
}

func TestOrchestrator_RunAsyncRecoversPanic(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, nil)
	s := f.newManualSession(t, session.SourceText, "content")

	orch, err := NewOrchestrator(Options{
		Store:     f.store,
		Staging:   f.staging,
		OCR:       &countingRecognizer{},
		Generator: panickingGenerator{},
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)

	orch.RunAsync(s.ID)
	orch.Wait()

	assert.Equal(t, session.StatusFailed, f.status(t, s.ID))
}

func TestOrchestrator_TerminalSessionIsNotReprocessed(t *testing.T) {
	f := newFixture(t, &orderedEngine{}, &scriptedCompleter{summary: "Summary", quiz: sampleQuizJSON})
	s := f.newManualSession(t, session.SourceText, "content")

	require.NoError(t, f.orch.Run(context.Background(), s.ID))

	err := f.orch.Run(context.Background(), s.ID)
	assert.Error(t, err)
	assert.Equal(t, session.StatusCompleted, f.status(t, s.ID))
}
