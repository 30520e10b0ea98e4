package session

import (
	"time"
)

// Status is the lifecycle state of a session
type Status string

const (
	StatusActive     Status = "active"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transitions are allowed from this status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether a session in status s may move to next.
// Transitions are monotonic: active -> processing -> {completed | failed}.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusProcessing || next == StatusCompleted || next == StatusFailed
	case StatusCompleted, StatusFailed:
		return false
	default:
		return false
	}
}

// Source describes where the content of a session comes from
type Source string

const (
	SourceCapture         Source = "capture"
	SourceText            Source = "text"
	SourceAudioTranscript Source = "audio_transcript"
	SourceDocument        Source = "document"
)

// IsManual reports whether the session content was supplied directly by the user
func (s Source) IsManual() bool {
	switch s {
	case SourceText, SourceAudioTranscript, SourceDocument:
		return true
	case SourceCapture:
		return false
	default:
		return false
	}
}

// Valid reports whether the source is one of the known variants
func (s Source) Valid() bool {
	switch s {
	case SourceCapture, SourceText, SourceAudioTranscript, SourceDocument:
		return true
	default:
		return false
	}
}

// Session is one capture-or-submission unit tracked through its status lifecycle
type Session struct {
	ID            string     `json:"id"`
	UserID        *string    `json:"user_id,omitempty"`
	Status        Status     `json:"status"`
	Source        Source     `json:"source"`
	ManualContent *string    `json:"manual_content,omitempty"`
	FileName      *string    `json:"file_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StoppedAt     *time.Time `json:"stopped_at,omitempty"`
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	out := *s
	out.UserID = cloneString(s.UserID)
	out.ManualContent = cloneString(s.ManualContent)
	out.FileName = cloneString(s.FileName)
	if s.StoppedAt != nil {
		t := *s.StoppedAt
		out.StoppedAt = &t
	}
	return &out
}

// SessionUpdate holds the mutable fields of a session. Nil fields are left unchanged.
type SessionUpdate struct {
	Status    *Status
	StoppedAt *time.Time
}

// Screenshot is a single captured frame belonging to a capture session
type Screenshot struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	ImageURL  string    `json:"image_url"`
	OCRText   *string   `json:"ocr_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is the persisted summary and quiz of a completed session
type Result struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Summary   string         `json:"summary"`
	Quiz      []QuizQuestion `json:"quiz"`
	CreatedAt time.Time      `json:"created_at"`
}

// Clone returns a deep copy of the result
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}

	out := *r
	out.Quiz = make([]QuizQuestion, len(r.Quiz))
	for i, q := range r.Quiz {
		out.Quiz[i] = q
		if q.Options != nil {
			out.Quiz[i].Options = append([]QuizOption(nil), q.Options...)
		}
	}
	return &out
}

// Helper to copy optional strings
func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
