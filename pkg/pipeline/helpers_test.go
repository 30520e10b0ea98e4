package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	sessionstore "github.com/ethanbaker/snapnotes/internal/stores/session"
	"github.com/ethanbaker/snapnotes/internal/stores/staging"
	"github.com/ethanbaker/snapnotes/pkg/ai"
	"github.com/ethanbaker/snapnotes/pkg/ocr"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 4, 2, 15, 4, 5, 0, time.UTC)

func strPtr(s string) *string { return &s }

// orderedEngine answers recognitions in call order
type orderedEngine struct {
	mu      sync.Mutex
	outputs []string
	failAt  int // 1-based call that fails, 0 never
	calls   int
}

func (e *orderedEngine) Recognize(ctx context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failAt == e.calls {
		return "", fmt.Errorf("recognition failed for %s", filepath.Base(path))
	}
	if e.calls > len(e.outputs) {
		return "", nil
	}
	return e.outputs[e.calls-1], nil
}

func (e *orderedEngine) Close() error { return nil }

// scriptedCompleter returns a summary first and a quiz second
type scriptedCompleter struct {
	mu       sync.Mutex
	summary  string
	quiz     string
	err      error
	requests []ai.ChatRequest
}

func (c *scriptedCompleter) Complete(ctx context.Context, req ai.ChatRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if strings.HasPrefix(req.Messages[len(req.Messages)-1].Content, ai.DefaultQuizUserPrefix) {
		return c.quiz, nil
	}
	return c.summary, nil
}

func (c *scriptedCompleter) userTurns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var turns []string
	for _, req := range c.requests {
		turns = append(turns, req.Messages[len(req.Messages)-1].Content)
	}
	return turns
}

const sampleQuizJSON = `Sure! Here is the quiz: {"questions":[
	{"question":"What does photosynthesis convert light into?","type":"multiple-choice","answer":"B",
	 "options":[{"label":"Heat","value":"A"},{"label":"Chemical energy","value":"B"},{"label":"Sound","value":"C"},{"label":"Motion","value":"D"}]},
	{"question":"Where does photosynthesis happen?","type":"multiple-choice","answer":"A",
	 "options":[{"label":"Chloroplasts","value":"A"},{"label":"Nucleus","value":"B"},{"label":"Ribosomes","value":"C"},{"label":"Vacuole","value":"D"}]}
]}`

// fixture wires an orchestrator over real in-memory stores and staging
type fixture struct {
	store     *sessionstore.InMemoryStore
	staging   *staging.Store
	engine    *orderedEngine
	builds    int
	completer *scriptedCompleter
	generator *ai.Generator
	orch      *Orchestrator
}

func newFixture(t *testing.T, engine *orderedEngine, completer *scriptedCompleter) *fixture {
	t.Helper()

	stage, err := staging.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	f := &fixture{
		store:     sessionstore.NewInMemoryStore(),
		staging:   stage,
		engine:    engine,
		completer: completer,
	}

	genOpts := ai.Options{Logger: zerolog.Nop()}
	if completer != nil {
		genOpts.Completer = completer
	}
	f.generator = ai.NewGenerator(genOpts)

	extractor := ocr.NewExtractor(func() (ocr.Engine, error) {
		f.builds++
		return engine, nil
	}, zerolog.Nop())

	f.orch, err = NewOrchestrator(Options{
		Store:     f.store,
		Staging:   stage,
		OCR:       extractor,
		Generator: f.generator,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	return f
}

// newCaptureSession creates a processing capture session with n staged frames
func (f *fixture) newCaptureSession(t *testing.T, frames int) *session.Session {
	t.Helper()
	ctx := context.Background()

	s, err := f.store.InsertSession(ctx, &session.Session{Source: session.SourceCapture})
	require.NoError(t, err)

	for i := range frames {
		_, err := f.staging.Save(s.ID, fmt.Sprintf("frame-%d.png", i), strings.NewReader("png"))
		require.NoError(t, err)
	}

	status := session.StatusProcessing
	_, err = f.store.UpdateSession(ctx, s.ID, session.SessionUpdate{Status: &status, StoppedAt: &fixedNow})
	require.NoError(t, err)

	return s
}

// newManualSession creates a processing manual session
func (f *fixture) newManualSession(t *testing.T, source session.Source, content string) *session.Session {
	t.Helper()

	in := &session.Session{
		Source:        source,
		Status:        session.StatusProcessing,
		ManualContent: strPtr(content),
		StoppedAt:     &fixedNow,
	}
	if source == session.SourceDocument {
		in.FileName = strPtr("notes.txt")
	}

	s, err := f.store.InsertSession(context.Background(), in)
	require.NoError(t, err)
	return s
}

func (f *fixture) status(t *testing.T, id string) session.Status {
	t.Helper()
	s, err := f.store.GetSession(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s.Status
}

func (f *fixture) stagedDirExists(id string) bool {
	_, err := os.Stat(filepath.Join(f.staging.Root(), id))
	return err == nil
}
