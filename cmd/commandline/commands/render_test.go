package commands

import (
	"testing"

	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	quiz := []session.QuizQuestion{
		{
			Question: "Where does photosynthesis happen?",
			Type:     session.QuestionMultipleChoice,
			Answer:   "A",
			Options: []session.QuizOption{
				{Label: "Chloroplasts", Value: "A"},
				{Label: "Nucleus", Value: "B"},
			},
		},
	}

	expected := "# Summary\n\nPlants make sugar.\n\n## Quiz\n\n" +
		"1. Where does photosynthesis happen?\n" +
		"   - A. Chloroplasts\n" +
		"   - B. Nucleus\n" +
		"   Answer: A\n"

	assert.Equal(t, expected, renderMarkdown(" Plants make sugar. \n", quiz))
}

func TestRenderMarkdown_NoQuiz(t *testing.T) {
	assert.Equal(t, "# Summary\n\nSummary unavailable.\n", renderMarkdown("Summary unavailable.", nil))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "y", plural(1, "y", "ies"))
	assert.Equal(t, "ies", plural(0, "y", "ies"))
	assert.Equal(t, "ies", plural(3, "y", "ies"))
}
