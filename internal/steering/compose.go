package steering

import (
	"strings"

	"github.com/haasonsaas/liverun/pkg/models"
)

const (
	userInjectionLabel = "The user sent the following while you were still working. Fold these instructions into what you do next:"
	stopDirective      = "STOP REQUESTED"
)

// BuildUserInjectionContent renders drained non-stop entries as a labeled
// bulleted list ready to fold into the next step's input. Returns "" for
// an empty sequence; callers must skip folding in that case rather than
// emit an empty instruction block. Content is sanitized again here so the
// builder is safe even when an entry bypassed the enqueue path.
func BuildUserInjectionContent(entries []*models.InjectionEntry) string {
	lines := bulletLines(entries)
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(userInjectionLabel)
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// BuildStopSystemMessage renders a high-priority instruction naming every
// stop-intent entry's content under a STOP REQUESTED directive. The run
// loop injects it so the model winds down cooperatively before, or
// instead of, hard cancellation.
func BuildStopSystemMessage(entries []*models.InjectionEntry) string {
	lines := bulletLines(entries)
	var b strings.Builder
	b.WriteString(stopDirective)
	b.WriteString(": the user asked to stop the current run.")
	if len(lines) > 0 {
		b.WriteString(" Their words:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
	}
	b.WriteString("Finish the sentence you are on, skip any remaining tool calls, and end the run now.")
	return b.String()
}

func bulletLines(entries []*models.InjectionEntry) []string {
	var lines []string
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		content := Sanitize(entry.Content)
		if content == "" {
			continue
		}
		lines = append(lines, "- "+content)
	}
	return lines
}
