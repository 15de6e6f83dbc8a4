package generation

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Sanitize strips the formatting artifacts models tend to wrap JSON in:
// leading/trailing code fences, literal \n escape sequences, and runs of
// whitespace. It does not validate JSON-ness; text without fences passes
// through and a later parse failure is reported by the caller.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\n`, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
