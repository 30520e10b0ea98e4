// Package cache provides the key/value cache used in front of immutable session results.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key joins key components with ':'
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// ResultKey is the cache key of a session's result
func ResultKey(sessionID string) string {
	return Key("result", sessionID)
}
