package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/google/uuid"
)

// InMemoryStore provides an in-memory implementation of session.Store for development and testing
type InMemoryStore struct {
	sessions    map[string]*session.Session
	screenshots map[string][]*session.Screenshot // sessionID -> screenshots
	results     map[string]*session.Result       // sessionID -> result
	mu          sync.RWMutex
	now         func() time.Time
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions:    make(map[string]*session.Session),
		screenshots: make(map[string][]*session.Screenshot),
		results:     make(map[string]*session.Result),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// InsertSession stores a copy of the session
func (s *InMemoryStore) InsertSession(ctx context.Context, in *session.Session) (*session.Session, error) {
	prepared, err := prepareSession(in, s.now())
	if err != nil {
		return nil, domain.ValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[prepared.ID]; exists {
		return nil, domain.StoreFailure(fmt.Sprintf("session '%s' already exists", prepared.ID), nil)
	}

	s.sessions[prepared.ID] = prepared
	return prepared.Clone(), nil
}

// UpdateSession applies a partial update, enforcing monotonic status transitions
func (s *InMemoryStore) UpdateSession(ctx context.Context, id string, update session.SessionUpdate) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.sessions[id]
	if !exists {
		return nil, nil
	}

	next, err := applyUpdate(current, update)
	if err != nil {
		return nil, err
	}

	s.sessions[id] = next
	return next.Clone(), nil
}

// GetSession retrieves a copy of a session, or nil if none exists
func (s *InMemoryStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[id].Clone(), nil
}

// ListSessions returns sessions newest first
func (s *InMemoryStore) ListSessions(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	limit, offset = normalizePage(limit, offset)

	s.mu.RLock()
	all := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*session.Session{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

// InsertScreenshot records a captured frame for an existing session
func (s *InMemoryStore) InsertScreenshot(ctx context.Context, shot *session.Screenshot) (*session.Screenshot, error) {
	if shot == nil {
		return nil, domain.ValidationError("screenshot cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[shot.SessionID]; !exists {
		return nil, domain.ContentNotFound(fmt.Sprintf("session '%s' not found", shot.SessionID), nil)
	}

	// Create a copy to avoid shared references
	stored := *shot
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	if shot.OCRText != nil {
		text := *shot.OCRText
		stored.OCRText = &text
	}

	s.screenshots[stored.SessionID] = append(s.screenshots[stored.SessionID], &stored)

	out := stored
	return &out, nil
}

// ListScreenshots returns copies of a session's frames in insertion order
func (s *InMemoryStore) ListScreenshots(ctx context.Context, sessionID string) ([]*session.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shots := s.screenshots[sessionID]
	out := make([]*session.Screenshot, 0, len(shots))
	for _, shot := range shots {
		c := *shot
		out = append(out, &c)
	}
	return out, nil
}

// InsertResult persists the result of a session. A session has at most one result.
func (s *InMemoryStore) InsertResult(ctx context.Context, r *session.Result) (*session.Result, error) {
	if r == nil {
		return nil, domain.ValidationError("result cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[r.SessionID]; exists {
		return nil, fmt.Errorf("%w: %s", session.ErrDuplicateResult, r.SessionID)
	}

	stored := r.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}

	s.results[stored.SessionID] = stored
	return stored.Clone(), nil
}

// GetResult retrieves a copy of a session's result, or nil if it is not ready
func (s *InMemoryStore) GetResult(ctx context.Context, sessionID string) (*session.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.results[sessionID].Clone(), nil
}
