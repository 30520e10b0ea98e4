// Package ai produces study summaries and quizzes with a chat completion model.
package ai

import (
	"context"
	"strings"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/rs/zerolog"
)

// Fixed responses used when the model cannot be consulted
const (
	PlaceholderNotConfigured = "AI summarisation is not configured. Please add an OpenAI API key."
	PlaceholderUnavailable   = "Summary unavailable."
)

// Default generation settings
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	MaxQuizQuestions   = 8
)

// Options configures a Generator. A nil Completer runs the generator in degraded mode.
type Options struct {
	Completer    ChatCompleter
	SummaryModel string
	QuizModel    string
	Temperature  *float64
	Prompts      Prompts
	Logger       zerolog.Logger
}

// Generator writes summaries and quizzes
type Generator struct {
	completer    ChatCompleter
	summaryModel string
	quizModel    string
	temperature  float64
	prompts      Prompts
	logger       zerolog.Logger
}

// NewGenerator creates a new generator, applying defaults for unset options
func NewGenerator(opts Options) *Generator {
	g := &Generator{
		completer:    opts.Completer,
		summaryModel: opts.SummaryModel,
		quizModel:    opts.QuizModel,
		temperature:  DefaultTemperature,
		prompts:      opts.Prompts.withDefaults(),
		logger:       opts.Logger,
	}

	if g.summaryModel == "" {
		g.summaryModel = DefaultModel
	}
	if g.quizModel == "" {
		g.quizModel = DefaultModel
	}
	if opts.Temperature != nil {
		g.temperature = *opts.Temperature
	}

	if g.completer == nil {
		g.logger.Warn().Msg("no chat completer configured, falling back to placeholder responses")
	}

	return g
}

// Enabled reports whether a model is configured
func (g *Generator) Enabled() bool {
	return g.completer != nil
}

// GenerateSummary combines text segments into a Markdown study summary
func (g *Generator) GenerateSummary(ctx context.Context, segments []string) (string, error) {
	if g.completer == nil {
		return PlaceholderNotConfigured, nil
	}

	text, err := g.completer.Complete(ctx, ChatRequest{
		Model: g.summaryModel,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: g.prompts.SummarySystem},
			{Role: RoleUser, Content: strings.Join(segments, "\n\n")},
		},
		Temperature: g.temperature,
	})
	if err != nil {
		return "", domain.AIGenerationFailure("failed to generate summary", err)
	}

	summary := strings.TrimSpace(text)
	if summary == "" {
		g.logger.Warn().Msg("summary response returned no text")
		return PlaceholderUnavailable, nil
	}

	return summary, nil
}

// GenerateQuiz writes quiz questions from a summary. Failures are logged and yield an empty quiz.
func (g *Generator) GenerateQuiz(ctx context.Context, summary string) []session.QuizQuestion {
	if g.completer == nil {
		return []session.QuizQuestion{}
	}

	text, err := g.completer.Complete(ctx, ChatRequest{
		Model: g.quizModel,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: g.prompts.QuizSystem},
			{Role: RoleUser, Content: g.prompts.QuizUserPrefix + summary},
		},
		Temperature: g.temperature,
	})
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to generate quiz")
		return []session.QuizQuestion{}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Warn().Msg("quiz response returned no text")
		return []session.QuizQuestion{}
	}

	questions := ParseQuiz(text)
	if len(questions) == 0 {
		g.logger.Warn().Msg("quiz response contained no parsable questions")
		return questions
	}

	// Drop multiple-choice questions whose answer does not match exactly one option
	valid := make([]session.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			g.logger.Warn().Err(err).Str("question", q.Question).Msg("dropping invalid quiz question")
			continue
		}
		valid = append(valid, q)
		if len(valid) == MaxQuizQuestions {
			break
		}
	}

	return valid
}
