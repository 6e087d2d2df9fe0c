package steering

import (
	"strings"
	"unicode"
)

// stopPhrases is the cancellation vocabulary, longest-first so multi-word
// phrases win over their prefixes.
var stopPhrases = []string{
	"never mind",
	"nevermind",
	"cancel",
	"abort",
	"halt",
	"stop",
	"wait",
}

// HasStopIntent reports whether free text asks to cancel the current run.
// Matching is a case-insensitive prefix check with a word boundary: the
// trimmed text must begin with a stop phrase followed by a non-word rune
// or end of string. The strict prefix anchor is deliberate. "stopping by"
// does not match because the rune after "stop" is a word rune, and
// "please stop using that tool" does not match because the phrase is not
// at the start; ordinary conversation that merely mentions a stop word
// must not abort an active run.
func HasStopIntent(text string) bool {
	return matchesStopPhrase(text, stopPhrases)
}

// HasStopIntentWith behaves like HasStopIntent but also recognizes the
// given extra phrases, typically sourced from configuration.
func HasStopIntentWith(text string, extra []string) bool {
	if matchesStopPhrase(text, stopPhrases) {
		return true
	}
	return matchesStopPhrase(text, extra)
}

func matchesStopPhrase(text string, phrases []string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return false
	}
	for _, phrase := range phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" || !strings.HasPrefix(trimmed, phrase) {
			continue
		}
		rest := trimmed[len(phrase):]
		if rest == "" {
			return true
		}
		next := []rune(rest)[0]
		if !isWordRune(next) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
