package session

import (
	"fmt"
)

// QuestionType is the kind of a quiz question
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionShortAnswer    QuestionType = "short-answer"
)

// QuizOption is one selectable answer of a multiple-choice question
type QuizOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// QuizQuestion is a single generated question
type QuizQuestion struct {
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Answer   string       `json:"answer"`
	Options  []QuizOption `json:"options,omitempty"`
}

// Validate checks that a multiple-choice answer matches exactly one unique option value
func (q QuizQuestion) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question text cannot be empty")
	}

	switch q.Type {
	case QuestionShortAnswer:
		return nil
	case QuestionMultipleChoice:
		seen := make(map[string]bool, len(q.Options))
		matches := 0
		for _, opt := range q.Options {
			if seen[opt.Value] {
				return fmt.Errorf("duplicate option value '%s'", opt.Value)
			}
			seen[opt.Value] = true

			if opt.Value == q.Answer {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("answer '%s' must match exactly one option, matched %d", q.Answer, matches)
		}
		return nil
	default:
		return fmt.Errorf("unsupported question type '%s'", q.Type)
	}
}
