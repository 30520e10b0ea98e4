package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultExtension is used when an upload has no usable extension
const DefaultExtension = ".png"

var extensionPattern = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// Store keeps captured frames on local disk under <root>/<sessionID>/ until they are processed
type Store struct {
	root   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewStore creates a staging store rooted at dir, creating the directory if needed
func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("staging directory cannot be empty")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &Store{
		root:   dir,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Root returns the staging root directory
func (s *Store) Root() string {
	return s.root
}

// Save writes an uploaded frame and returns its path. File names sort in upload order.
func (s *Store) Save(sessionID, originalName string, r io.Reader) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	name := fmt.Sprintf("%019d-%s%s", s.now().UnixNano(), uuid.NewString(), extensionOf(originalName))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close staged file: %w", err)
	}

	return path, nil
}

// ListFiles returns the staged file paths of a session in capture order
func (s *Store) ListFiles(sessionID string) ([]string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Str("session_id", sessionID).Msg("no staging directory for session")
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// DeleteDirectory removes a session's staged files. Failures are logged only.
func (s *Store) DeleteDirectory(sessionID string) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("refusing to delete staging directory")
		return
	}

	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to delete staging directory")
		return
	}

	s.logger.Debug().Str("session_id", sessionID).Msg("deleted staging directory")
}

// Sweep removes session directories last modified before the retention window and returns how many were removed
func (s *Store) Sweep(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read staging root: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("dir", entry.Name()).Msg("failed to stat staging directory")
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("dir", entry.Name()).Msg("failed to sweep staging directory")
			continue
		}
		removed++
	}

	return removed, nil
}

// Helper to resolve a session directory, rejecting ids that escape the root
func (s *Store) sessionDir(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("invalid session id '%s'", sessionID)
	}
	return filepath.Join(s.root, sessionID), nil
}

// Helper to pick a safe lowercase extension for a staged file
func extensionOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !extensionPattern.MatchString(ext) {
		return DefaultExtension
	}
	return ext
}
