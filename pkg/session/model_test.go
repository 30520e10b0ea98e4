package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{StatusActive, StatusProcessing, true},
		{StatusActive, StatusCompleted, false},
		{StatusActive, StatusFailed, false},
		{StatusProcessing, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusActive, false},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
		{StatusFailed, StatusActive, false},
		{Status("bogus"), StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestSource(t *testing.T) {
	assert.False(t, SourceCapture.IsManual())
	assert.True(t, SourceText.IsManual())
	assert.True(t, SourceAudioTranscript.IsManual())
	assert.True(t, SourceDocument.IsManual())
	assert.False(t, Source("video").IsManual())

	assert.True(t, SourceDocument.Valid())
	assert.False(t, Source("video").Valid())
}

func TestSession_Clone(t *testing.T) {
	content := "notes"
	stopped := time.Now()
	original := &Session{
		ID:            "s1",
		Status:        StatusProcessing,
		Source:        SourceText,
		ManualContent: &content,
		StoppedAt:     &stopped,
	}

	clone := original.Clone()
	assert.Equal(t, original, clone)

	*clone.ManualContent = "changed"
	*clone.StoppedAt = stopped.Add(time.Hour)
	assert.Equal(t, "notes", *original.ManualContent)
	assert.Equal(t, stopped, *original.StoppedAt)

	var nilSession *Session
	assert.Nil(t, nilSession.Clone())
}

func TestResult_Clone(t *testing.T) {
	original := &Result{
		ID:        "r1",
		SessionID: "s1",
		Summary:   "# Summary",
		Quiz: []QuizQuestion{{
			Question: "Q?",
			Type:     QuestionMultipleChoice,
			Answer:   "a",
			Options:  []QuizOption{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
		}},
	}

	clone := original.Clone()
	assert.Equal(t, original, clone)

	clone.Quiz[0].Options[0].Value = "z"
	assert.Equal(t, "a", original.Quiz[0].Options[0].Value)
}
