package session

import (
	"context"
	"testing"

	"github.com/ethanbaker/snapnotes/internal/cache"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how often results are read from the backing store
type countingStore struct {
	*InMemoryStore
	resultReads int
}

func (s *countingStore) GetResult(ctx context.Context, sessionID string) (*session.Result, error) {
	s.resultReads++
	return s.InMemoryStore.GetResult(ctx, sessionID)
}

func TestCachedStore_GetResult(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{InMemoryStore: NewInMemoryStore()}
	client := cache.NewMemoryClient(10)
	defer client.Close()

	store := NewCachedStore(inner, client, 0, zerolog.Nop())

	s, err := store.InsertSession(ctx, &session.Session{Source: session.SourceCapture})
	require.NoError(t, err)

	// Misses are never cached
	for range 2 {
		got, err := store.GetResult(ctx, s.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 2, inner.resultReads)

	// A result written behind the cache is visible on the next poll
	_, err = inner.InsertResult(ctx, &session.Result{SessionID: s.ID, Summary: "done"})
	require.NoError(t, err)

	got, err := store.GetResult(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "done", got.Summary)
	assert.Equal(t, 3, inner.resultReads)

	// Subsequent hits are served from the cache
	got, err = store.GetResult(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Summary)
	assert.Equal(t, 3, inner.resultReads)
}

func TestCachedStore_InsertResultPrimesCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{InMemoryStore: NewInMemoryStore()}
	client := cache.NewMemoryClient(10)
	defer client.Close()

	store := NewCachedStore(inner, client, 0, zerolog.Nop())

	s, err := store.InsertSession(ctx, &session.Session{Source: session.SourceCapture})
	require.NoError(t, err)

	_, err = store.InsertResult(ctx, &session.Result{SessionID: s.ID, Summary: "primed"})
	require.NoError(t, err)

	got, err := store.GetResult(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "primed", got.Summary)
	assert.Equal(t, 0, inner.resultReads)

	_, err = store.InsertResult(ctx, &session.Result{SessionID: s.ID, Summary: "dup"})
	assert.ErrorIs(t, err, session.ErrDuplicateResult)
}
