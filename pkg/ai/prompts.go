package ai

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSummarySystemPrompt instructs the model to write a Markdown study summary
const DefaultSummarySystemPrompt = `You are an expert lecture note-taker. Combine the provided OCR snippets into a concise study summary.
- Use clear sections with headings where appropriate.
- Highlight key concepts, definitions, and action items.
- Keep the tone factual and student friendly.
Return the response in Markdown.`

// DefaultQuizSystemPrompt instructs the model to answer with strict quiz JSON
const DefaultQuizSystemPrompt = `You are an educational quiz generator. Create multiple-choice quiz questions based on the provided summary.
For each question, provide:
- A clear question
- 4 distinct answer options (A, B, C, D)
- The correct answer
- Type should be 'multiple-choice'

Return ONLY valid JSON in this exact format:
{
  "questions": [
    {
      "question": "What is...?",
      "type": "multiple-choice",
      "answer": "A",
      "options": [
        {"label": "Option A text", "value": "A"},
        {"label": "Option B text", "value": "B"},
        {"label": "Option C text", "value": "C"},
        {"label": "Option D text", "value": "D"}
      ]
    }
  ]
}

Make questions diverse (conceptual, factual, application-based). Each option should be plausible but only one correct.`

// DefaultQuizUserPrefix precedes the summary in the quiz request
const DefaultQuizUserPrefix = "Create 5-8 quiz questions from this summary:\n\n"

// Prompts holds the instructions sent to the model
type Prompts struct {
	SummarySystem  string `json:"summary_system" yaml:"summary_system"`
	QuizSystem     string `json:"quiz_system" yaml:"quiz_system"`
	QuizUserPrefix string `json:"quiz_user_prefix" yaml:"quiz_user_prefix"`
}

// DefaultPrompts returns the built-in prompts
func DefaultPrompts() Prompts {
	return Prompts{
		SummarySystem:  DefaultSummarySystemPrompt,
		QuizSystem:     DefaultQuizSystemPrompt,
		QuizUserPrefix: DefaultQuizUserPrefix,
	}
}

// withDefaults fills blank prompts from the built-ins
func (p Prompts) withDefaults() Prompts {
	defaults := DefaultPrompts()
	if strings.TrimSpace(p.SummarySystem) == "" {
		p.SummarySystem = defaults.SummarySystem
	}
	if strings.TrimSpace(p.QuizSystem) == "" {
		p.QuizSystem = defaults.QuizSystem
	}
	if p.QuizUserPrefix == "" {
		p.QuizUserPrefix = defaults.QuizUserPrefix
	}
	return p
}

// LoadPrompts reads prompt overrides from a YAML file. Keys left out keep their defaults.
// An empty path returns the defaults.
func LoadPrompts(filePath string) (Prompts, error) {
	if filePath == "" {
		return DefaultPrompts(), nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return Prompts{}, fmt.Errorf("failed to read prompts file %s: %w", filePath, err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return Prompts{}, fmt.Errorf("failed to parse prompts file %s: %w", filePath, err)
	}

	overrides.SummarySystem = strings.TrimSpace(overrides.SummarySystem)
	overrides.QuizSystem = strings.TrimSpace(overrides.QuizSystem)

	return overrides.withDefaults(), nil
}
