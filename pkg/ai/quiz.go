package ai

import (
	"encoding/json"
	"strings"

	"github.com/ethanbaker/snapnotes/pkg/session"
)

// quizEnvelope is the JSON object the model is asked to return
type quizEnvelope struct {
	Questions []session.QuizQuestion `json:"questions"`
}

// ParseQuiz decodes a model response into quiz questions. The whole text is tried first,
// then the span from the first '{' to the last '}'. Anything else yields an empty quiz.
func ParseQuiz(text string) []session.QuizQuestion {
	text = strings.TrimSpace(text)
	if text == "" {
		return []session.QuizQuestion{}
	}

	if questions, ok := decodeQuiz(text); ok {
		return questions
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if questions, ok := decodeQuiz(text[start : end+1]); ok {
			return questions
		}
	}

	return []session.QuizQuestion{}
}

// Helper to decode a JSON quiz envelope
func decodeQuiz(text string) ([]session.QuizQuestion, bool) {
	var envelope quizEnvelope
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, false
	}
	if envelope.Questions == nil {
		return []session.QuizQuestion{}, true
	}
	return envelope.Questions, true
}
