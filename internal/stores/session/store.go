package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLStore handles session persistence using GORM
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMySQLStore creates a new session store backed by MySQL
func NewMySQLStore(dsn string) (*SQLStore, error) {
	return open(mysql.Open(dsn))
}

// NewSQLiteStore creates a new session store backed by a SQLite file
func NewSQLiteStore(path string) (*SQLStore, error) {
	return open(sqlite.Open(path))
}

// Helper to open a GORM connection and migrate the tables
func open(dialector gorm.Dialector) (*SQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}

	// Auto-migrate tables
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// migrate creates or updates the required database tables
func (s *SQLStore) migrate() error {
	return s.db.AutoMigrate(&SessionModel{}, &ScreenshotModel{}, &ResultModel{})
}

// InsertSession creates a new session in the database
func (s *SQLStore) InsertSession(ctx context.Context, in *session.Session) (*session.Session, error) {
	prepared, err := prepareSession(in, s.now())
	if err != nil {
		return nil, domain.ValidationError(err.Error())
	}

	model := sessionToModel(prepared)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, domain.StoreFailure("failed to create session", err)
	}

	return model.toSession(), nil
}

// UpdateSession applies a partial update to a session, enforcing monotonic status transitions
func (s *SQLStore) UpdateSession(ctx context.Context, id string, update session.SessionUpdate) (*session.Session, error) {
	var updated *session.Session

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current SessionModel
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return domain.StoreFailure("failed to get session", err)
		}

		next, err := applyUpdate(current.toSession(), update)
		if err != nil {
			return err
		}

		// Guard on the status we read so a concurrent writer cannot be overwritten
		result := tx.Model(&SessionModel{}).
			Where("id = ? AND status = ?", id, current.Status).
			Updates(map[string]any{
				"status":     string(next.Status),
				"stopped_at": next.StoppedAt,
			})
		if result.Error != nil {
			return domain.StoreFailure("failed to update session", result.Error)
		}

		if result.RowsAffected == 0 {
			// MySQL reports zero rows for no-op updates, so re-read before rejecting
			var check SessionModel
			if err := tx.First(&check, "id = ?", id).Error; err != nil {
				return domain.StoreFailure("failed to re-read session", err)
			}
			if check.Status != current.Status {
				return fmt.Errorf("%w: %s changed concurrently", session.ErrInvalidTransition, id)
			}
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// GetSession retrieves a session by ID, or nil if none exists
func (s *SQLStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	var model SessionModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, domain.StoreFailure("failed to get session", err)
	}

	return model.toSession(), nil
}

// ListSessions returns sessions newest first
func (s *SQLStore) ListSessions(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	limit, offset = normalizePage(limit, offset)

	var models []SessionModel
	result := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&models)
	if result.Error != nil {
		return nil, domain.StoreFailure("failed to list sessions", result.Error)
	}

	sessions := make([]*session.Session, 0, len(models))
	for i := range models {
		sessions = append(sessions, models[i].toSession())
	}
	return sessions, nil
}

// InsertScreenshot records a captured frame for an existing session
func (s *SQLStore) InsertScreenshot(ctx context.Context, shot *session.Screenshot) (*session.Screenshot, error) {
	if shot == nil {
		return nil, domain.ValidationError("screenshot cannot be nil")
	}

	model := screenshotToModel(shot)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = s.now()
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&SessionModel{}).Where("id = ?", model.SessionID).Count(&count).Error; err != nil {
		return nil, domain.StoreFailure("failed to check session", err)
	}
	if count == 0 {
		return nil, domain.ContentNotFound(fmt.Sprintf("session '%s' not found", model.SessionID), nil)
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, domain.StoreFailure("failed to save screenshot", err)
	}

	return model.toScreenshot(), nil
}

// ListScreenshots returns a session's frames oldest first
func (s *SQLStore) ListScreenshots(ctx context.Context, sessionID string) ([]*session.Screenshot, error) {
	var models []ScreenshotModel
	result := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").Order("id ASC").
		Find(&models)
	if result.Error != nil {
		return nil, domain.StoreFailure("failed to list screenshots", result.Error)
	}

	shots := make([]*session.Screenshot, 0, len(models))
	for i := range models {
		shots = append(shots, models[i].toScreenshot())
	}
	return shots, nil
}

// InsertResult persists the result of a session. A session has at most one result.
func (s *SQLStore) InsertResult(ctx context.Context, r *session.Result) (*session.Result, error) {
	if r == nil {
		return nil, domain.ValidationError("result cannot be nil")
	}

	model := resultToModel(r)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = s.now()
	}

	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", session.ErrDuplicateResult, model.SessionID)
		}
		return nil, domain.StoreFailure("failed to save result", err)
	}

	return model.toResult(), nil
}

// GetResult retrieves the result of a session, or nil if it is not ready
func (s *SQLStore) GetResult(ctx context.Context, sessionID string) (*session.Result, error) {
	var model ResultModel
	if err := s.db.WithContext(ctx).First(&model, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, domain.StoreFailure("failed to get result", err)
	}

	return model.toResult(), nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
