package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ethanbaker/snapnotes/internal/cache"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
)

// CachedStore decorates a store with a read-through cache for results.
// Results are immutable once written, so only hits are cached.
type CachedStore struct {
	session.Store

	cache  cache.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedStore wraps a store with a result cache
func NewCachedStore(inner session.Store, client cache.Client, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	return &CachedStore{
		Store:  inner,
		cache:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// InsertResult persists a result and primes the cache with it
func (s *CachedStore) InsertResult(ctx context.Context, r *session.Result) (*session.Result, error) {
	stored, err := s.Store.InsertResult(ctx, r)
	if err != nil {
		return nil, err
	}

	s.put(ctx, stored)
	return stored, nil
}

// GetResult serves a result from the cache, falling back to the wrapped store
func (s *CachedStore) GetResult(ctx context.Context, sessionID string) (*session.Result, error) {
	key := cache.ResultKey(sessionID)

	data, err := s.cache.Get(ctx, key)
	if err == nil {
		var r session.Result
		if err := json.Unmarshal(data, &r); err == nil {
			return &r, nil
		}
		s.logger.Warn().Str("session_id", sessionID).Msg("discarding undecodable cached result")
		_ = s.cache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("result cache read failed")
	}

	r, err := s.Store.GetResult(ctx, sessionID)
	if err != nil || r == nil {
		return r, err
	}

	s.put(ctx, r)
	return r, nil
}

// Helper to write a result to the cache; failures are logged only
func (s *CachedStore) put(ctx context.Context, r *session.Result) {
	data, err := json.Marshal(r)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", r.SessionID).Msg("failed to encode result for cache")
		return
	}

	if err := s.cache.Set(ctx, cache.ResultKey(r.SessionID), data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("session_id", r.SessionID).Msg("result cache write failed")
	}
}
