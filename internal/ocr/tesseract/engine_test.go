package tesseract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_MissingImage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tesseract integration test in short mode")
	}

	engine, err := New("eng")
	require.NoError(t, err)
	defer engine.Close()

	_, err = engine.Recognize(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestEngine_Closed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping tesseract integration test in short mode")
	}

	engine, err := New("")
	require.NoError(t, err)
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())

	_, err = engine.Recognize(context.Background(), "any.png")
	assert.ErrorContains(t, err, "closed")
}

func TestEngine_CancelledContext(t *testing.T) {
	engine := &Engine{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Recognize(ctx, "any.png")
	assert.ErrorIs(t, err, context.Canceled)
}
