package commands

import (
	"fmt"
	"strings"

	"github.com/ethanbaker/snapnotes/pkg/session"
)

// renderMarkdown prints a summary followed by its quiz
func renderMarkdown(summary string, quiz []session.QuizQuestion) string {
	var b strings.Builder

	b.WriteString("# Summary\n\n")
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n")

	if len(quiz) == 0 {
		return b.String()
	}

	b.WriteString("\n## Quiz\n")
	for i, q := range quiz {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, q.Question)
		for _, opt := range q.Options {
			fmt.Fprintf(&b, "   - %s. %s\n", opt.Value, opt.Label)
		}
		fmt.Fprintf(&b, "   Answer: %s\n", q.Answer)
	}

	return b.String()
}
