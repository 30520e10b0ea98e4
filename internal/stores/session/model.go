package session

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethanbaker/snapnotes/pkg/session"
)

// QuizData is a wrapper type that implements database serialization of a quiz
type QuizData []session.QuizQuestion

// Value implements the driver.Valuer interface for database storage
func (q QuizData) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]session.QuizQuestion(q))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz: %w", err)
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (q *QuizData) Scan(value any) error {
	if value == nil {
		*q = QuizData{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into QuizData", value)
	}

	var questions []session.QuizQuestion
	if err := json.Unmarshal(bytes, &questions); err != nil {
		return fmt.Errorf("failed to unmarshal QuizData: %w", err)
	}
	if questions == nil {
		questions = []session.QuizQuestion{}
	}

	*q = questions
	return nil
}

// SessionModel represents the database model for sessions
type SessionModel struct {
	ID        string     `gorm:"type:char(36);primaryKey;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	StoppedAt *time.Time `gorm:"column:stopped_at"`

	UserID        *string `gorm:"column:user_id;size:255"`
	Status        string  `gorm:"column:status;size:32;not null;index"`
	Source        string  `gorm:"column:source;size:32;not null"`
	ManualContent *string `gorm:"column:manual_content;type:longtext"`
	FileName      *string `gorm:"column:file_name;size:255"`
}

// TableName sets the table name for GORM
func (SessionModel) TableName() string {
	return "sessions"
}

func sessionToModel(s *session.Session) *SessionModel {
	return &SessionModel{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		StoppedAt:     s.StoppedAt,
		UserID:        s.UserID,
		Status:        string(s.Status),
		Source:        string(s.Source),
		ManualContent: s.ManualContent,
		FileName:      s.FileName,
	}
}

func (m *SessionModel) toSession() *session.Session {
	return &session.Session{
		ID:            m.ID,
		UserID:        m.UserID,
		Status:        session.Status(m.Status),
		Source:        session.Source(m.Source),
		ManualContent: m.ManualContent,
		FileName:      m.FileName,
		CreatedAt:     m.CreatedAt,
		StoppedAt:     m.StoppedAt,
	}
}

// ScreenshotModel represents the database model for captured frames
type ScreenshotModel struct {
	ID        string    `gorm:"type:char(36);primaryKey;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`

	SessionID string  `gorm:"column:session_id;type:char(36);not null;index"`
	ImageURL  string  `gorm:"column:image_url;size:1024;not null"`
	OCRText   *string `gorm:"column:ocr_text;type:text"`
}

// TableName sets the table name for GORM
func (ScreenshotModel) TableName() string {
	return "screenshots"
}

func screenshotToModel(s *session.Screenshot) *ScreenshotModel {
	return &ScreenshotModel{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		SessionID: s.SessionID,
		ImageURL:  s.ImageURL,
		OCRText:   s.OCRText,
	}
}

func (m *ScreenshotModel) toScreenshot() *session.Screenshot {
	return &session.Screenshot{
		ID:        m.ID,
		SessionID: m.SessionID,
		ImageURL:  m.ImageURL,
		OCRText:   m.OCRText,
		CreatedAt: m.CreatedAt,
	}
}

// ResultModel represents the database model for generated results
type ResultModel struct {
	ID        string    `gorm:"type:char(36);primaryKey;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`

	SessionID string   `gorm:"column:session_id;type:char(36);not null;uniqueIndex"`
	Summary   string   `gorm:"column:summary;type:longtext;not null"`
	Quiz      QuizData `gorm:"column:quiz;type:longtext;not null"`
}

// TableName sets the table name for GORM
func (ResultModel) TableName() string {
	return "results"
}

func resultToModel(r *session.Result) *ResultModel {
	return &ResultModel{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		SessionID: r.SessionID,
		Summary:   r.Summary,
		Quiz:      QuizData(r.Quiz),
	}
}

func (m *ResultModel) toResult() *session.Result {
	quiz := []session.QuizQuestion(m.Quiz)
	if quiz == nil {
		quiz = []session.QuizQuestion{}
	}
	return &session.Result{
		ID:        m.ID,
		SessionID: m.SessionID,
		Summary:   m.Summary,
		Quiz:      quiz,
		CreatedAt: m.CreatedAt,
	}
}
