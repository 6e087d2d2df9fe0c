package steering

import (
	"regexp"
	"strings"
)

// MaxInjectionLength caps sanitized injection content, measured in runes
// after trimming.
const MaxInjectionLength = 2000

// Injected text is untrusted and gets folded into model input, so
// system-level markers smuggled through it are relabeled rather than
// trusted. The replacement keeps the content auditable: a reviewer can
// still see that the user tried to pass a system marker.
var (
	systemBracketRe  = regexp.MustCompile(`(?i)\[\s*SYSTEM\s*:`)
	systemOpenTagRe  = regexp.MustCompile(`(?i)<\s*system\s*>`)
	systemCloseTagRe = regexp.MustCompile(`(?i)<\s*/\s*system\s*>`)
)

// Sanitize prepares untrusted text for the live-injection path. It
// relabels [SYSTEM: ...] markers and <system>...</system> tags as
// user-attributed, trims surrounding whitespace, and truncates to
// MaxInjectionLength runes. Malformed input is never rejected; it
// degrades through these transforms instead.
func Sanitize(text string) string {
	return SanitizeWithLimit(text, MaxInjectionLength)
}

// SanitizeWithLimit is Sanitize with a caller-chosen length cap. A
// non-positive limit falls back to MaxInjectionLength.
func SanitizeWithLimit(text string, limit int) string {
	if limit <= 0 {
		limit = MaxInjectionLength
	}
	out := strings.TrimSpace(text)
	out = systemBracketRe.ReplaceAllString(out, "[user-note:")
	out = systemOpenTagRe.ReplaceAllString(out, "<user-note>")
	out = systemCloseTagRe.ReplaceAllString(out, "</user-note>")
	out = strings.TrimSpace(out)
	runes := []rune(out)
	if len(runes) > limit {
		out = string(runes[:limit])
	}
	return out
}
