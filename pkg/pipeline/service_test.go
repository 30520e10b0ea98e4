package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	sessionstore "github.com/ethanbaker/snapnotes/internal/stores/session"
	"github.com/ethanbaker/snapnotes/internal/stores/staging"
	"github.com/ethanbaker/snapnotes/pkg/document"
	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDispatcher remembers every session it was asked to run
type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDispatcher) RunAsync(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, sessionID)
}

func (d *recordingDispatcher) dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

// stubDocuments returns canned extraction output
type stubDocuments struct {
	text  string
	err   error
	calls int
}

func (s *stubDocuments) ExtractText(ctx context.Context, data []byte, fileName string) (string, error) {
	s.calls++
	return s.text, s.err
}

type serviceFixture struct {
	store      *sessionstore.InMemoryStore
	staging    *staging.Store
	dispatcher *recordingDispatcher
	service    *Service
}

func newServiceFixture(t *testing.T, docs DocumentExtractor) *serviceFixture {
	t.Helper()

	stage, err := staging.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	f := &serviceFixture{
		store:      sessionstore.NewInMemoryStore(),
		staging:    stage,
		dispatcher: &recordingDispatcher{},
	}

	f.service, err = NewService(ServiceOptions{
		Store:      f.store,
		Frames:     stage,
		Documents:  docs,
		Dispatcher: f.dispatcher,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	return f
}

func (f *serviceFixture) sessionCount(t *testing.T) int {
	t.Helper()
	sessions, err := f.store.ListSessions(context.Background(), 100, 0)
	require.NoError(t, err)
	return len(sessions)
}

func TestService_CaptureLifecycle(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	created, err := f.service.CreateCaptureSession(ctx, strPtr("student-1"))
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, created.Status)
	assert.Equal(t, session.SourceCapture, created.Source)
	assert.Nil(t, created.StoppedAt)
	require.NotNil(t, created.UserID)
	assert.Equal(t, "student-1", *created.UserID)

	shot, err := f.service.UploadScreenshot(ctx, created.ID, "frame.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(shot.ImageURL, "/uploads/"+created.ID+"/"))
	assert.True(t, strings.HasSuffix(shot.ImageURL, ".png"))

	stopped, err := f.service.StopSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusProcessing, stopped.Status)
	assert.NotNil(t, stopped.StoppedAt)
	assert.Equal(t, []string{created.ID}, f.dispatcher.dispatched())

	shots, err := f.service.ListScreenshots(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, shots, 1)

	files, err := f.staging.ListFiles(created.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestService_CreateCaptureSessionBlankUser(t *testing.T) {
	f := newServiceFixture(t, nil)

	created, err := f.service.CreateCaptureSession(context.Background(), strPtr("  "))
	require.NoError(t, err)
	assert.Nil(t, created.UserID)
}

func TestService_StopSession(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.StopSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	created, err := f.service.CreateCaptureSession(ctx, nil)
	require.NoError(t, err)

	_, err = f.service.StopSession(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.service.StopSession(ctx, created.ID)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	assert.Len(t, f.dispatcher.dispatched(), 1)
}

func TestService_UploadScreenshotRejected(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.UploadScreenshot(ctx, "missing", "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	manual, err := f.service.SubmitManual(ctx, ManualInput{Content: "notes", Source: session.SourceText})
	require.NoError(t, err)
	_, err = f.service.UploadScreenshot(ctx, manual.ID, "a.png", strings.NewReader("x"))
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	capture, err := f.service.CreateCaptureSession(ctx, nil)
	require.NoError(t, err)
	_, err = f.service.StopSession(ctx, capture.ID)
	require.NoError(t, err)
	_, err = f.service.UploadScreenshot(ctx, capture.ID, "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestService_SubmitManual(t *testing.T) {
	f := newServiceFixture(t, nil)

	created, err := f.service.SubmitManual(context.Background(), ManualInput{
		Content: "  Photosynthesis converts light into chemical energy.  ",
		Source:  session.SourceText,
	})
	require.NoError(t, err)

	assert.Equal(t, session.StatusProcessing, created.Status)
	assert.Equal(t, session.SourceText, created.Source)
	assert.NotNil(t, created.StoppedAt)
	require.NotNil(t, created.ManualContent)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", *created.ManualContent)
	assert.Nil(t, created.FileName)
	assert.Equal(t, []string{created.ID}, f.dispatcher.dispatched())
}

func TestService_SubmitManualValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      ManualInput
		message string
	}{
		{"empty text", ManualInput{Content: " \n\t", Source: session.SourceText}, "Content cannot be empty"},
		{"empty transcript", ManualInput{Content: "", Source: session.SourceAudioTranscript}, "Transcript cannot be empty"},
		{"long text", ManualInput{Content: strings.Repeat("a", MaxManualContentLength+1), Source: session.SourceText}, "Content exceeds maximum length (1MB)"},
		{"long transcript", ManualInput{Content: strings.Repeat("é", MaxManualContentLength+1), Source: session.SourceAudioTranscript}, "Transcript exceeds maximum length (1MB)"},
		{"capture source", ManualInput{Content: "x", Source: session.SourceCapture}, "not a manual input source"},
		{"document without name", ManualInput{Content: "x", Source: session.SourceDocument}, "file name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, nil)

			_, err := f.service.SubmitManual(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
			assert.Contains(t, err.Error(), tt.message)

			assert.Zero(t, f.sessionCount(t))
			assert.Empty(t, f.dispatcher.dispatched())
		})
	}
}

func TestService_SubmitManualAtLimit(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.SubmitManual(context.Background(), ManualInput{
		Content: strings.Repeat("é", MaxManualContentLength),
		Source:  session.SourceText,
	})
	assert.NoError(t, err)
}

func TestService_SubmitDocument(t *testing.T) {
	f := newServiceFixture(t, document.NewExtractor(document.Options{Logger: zerolog.Nop()}))

	created, length, err := f.service.SubmitDocument(context.Background(), "notes.txt", []byte("\n Cell biology notes \n"))
	require.NoError(t, err)

	assert.Equal(t, session.SourceDocument, created.Source)
	assert.Equal(t, session.StatusProcessing, created.Status)
	require.NotNil(t, created.FileName)
	assert.Equal(t, "notes.txt", *created.FileName)
	require.NotNil(t, created.ManualContent)
	assert.Equal(t, "Cell biology notes", *created.ManualContent)
	assert.Equal(t, len("Cell biology notes"), length)
	assert.Equal(t, []string{created.ID}, f.dispatcher.dispatched())
}

func TestService_SubmitDocumentRejected(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		docs     *stubDocuments
		kind     domain.ErrorKind
		message  string
		extracts bool
	}{
		{
			name:     "oversized pdf",
			fileName: "lecture.pdf",
			data:     make([]byte, 60*1024*1024),
			docs:     &stubDocuments{text: "never read"},
			kind:     domain.KindValidation,
			message:  "50MB",
		},
		{
			name:     "unsupported extension",
			fileName: "slides.pptx",
			data:     []byte("x"),
			docs:     &stubDocuments{text: "never read"},
			kind:     domain.KindValidation,
			message:  "Unsupported file type",
		},
		{
			name:     "corrupt document",
			fileName: "notes.docx",
			data:     []byte("not a zip"),
			docs:     &stubDocuments{err: domain.ExtractionError("bad archive", errors.New("zip: not a valid zip file"))},
			kind:     domain.KindValidation,
			message:  "Failed to extract text from document. File may be corrupted or unsupported.",
			extracts: true,
		},
		{
			name:     "unsupported by extractor",
			fileName: "notes.doc",
			data:     []byte("x"),
			docs:     &stubDocuments{err: domain.UnsupportedFormat("unsupported document format 'doc'")},
			kind:     domain.KindUnsupportedFormat,
			message:  "unsupported document format",
			extracts: true,
		},
		{
			name:     "no text",
			fileName: "scan.pdf",
			data:     []byte("%PDF-1.4"),
			docs:     &stubDocuments{text: "  \n"},
			kind:     domain.KindValidation,
			message:  "No text could be extracted from document",
			extracts: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, tt.docs)

			created, _, err := f.service.SubmitDocument(context.Background(), tt.fileName, tt.data)
			require.Error(t, err)
			assert.Nil(t, created)
			assert.True(t, domain.IsKind(err, tt.kind), "unexpected error kind: %v", err)
			assert.Contains(t, err.Error(), tt.message)

			assert.Equal(t, tt.extracts, tt.docs.calls > 0)
			assert.Zero(t, f.sessionCount(t))
			assert.Empty(t, f.dispatcher.dispatched())
		})
	}
}

func TestService_GetSessionAndResult(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	created, err := f.service.SubmitManual(ctx, ManualInput{Content: "notes", Source: session.SourceText})
	require.NoError(t, err)

	found, err := f.service.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	result, err := f.service.GetResult(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, result)

	_, err = f.store.InsertResult(ctx, &session.Result{SessionID: created.ID, Summary: "Done", Quiz: []session.QuizQuestion{}})
	require.NoError(t, err)

	result, err = f.service.GetResult(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Done", result.Summary)
}

func TestService_ListSessionsPreview(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()

	withResult, err := f.service.SubmitManual(ctx, ManualInput{Content: "first", Source: session.SourceText})
	require.NoError(t, err)
	_, err = f.store.InsertResult(ctx, &session.Result{SessionID: withResult.ID, Summary: strings.Repeat("s", 200), Quiz: []session.QuizQuestion{}})
	require.NoError(t, err)

	_, err = f.service.CreateCaptureSession(ctx, nil)
	require.NoError(t, err)

	sessions, err := f.service.ListSessions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var previews int
	for _, entry := range sessions {
		if entry.ID != withResult.ID {
			assert.Nil(t, entry.SummaryPreview)
			continue
		}
		previews++
		require.NotNil(t, entry.SummaryPreview)
		assert.Equal(t, strings.Repeat("s", SummaryPreviewLength)+"...", *entry.SummaryPreview)
	}
	assert.Equal(t, 1, previews)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short...", Preview("short", 150))
	assert.Equal(t, "ab...", Preview("abcdef", 2))
	assert.Equal(t, "éé...", Preview("ééé", 2))
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceOptions{Dispatcher: &recordingDispatcher{}})
	assert.Error(t, err)

	_, err = NewService(ServiceOptions{Store: sessionstore.NewInMemoryStore()})
	assert.Error(t, err)
}
