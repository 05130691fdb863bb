package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	unsafeRunesRe = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}-]`)
	spaceRunRe    = regexp.MustCompile(`[\s\p{Z}]+`)
)

// NormalizeSubject makes s safe for a filename: only letters, digits,
// underscores and hyphens survive, whitespace runs become one underscore, the
// result is cut to maxLen runes and loses trailing underscores.
// NormalizeSubject(NormalizeSubject(s, n), n) == NormalizeSubject(s, n).
func NormalizeSubject(s string, maxLen int) string {
	s = unsafeRunesRe.ReplaceAllString(s, "")
	s = strings.TrimFunc(s, isSpace)
	s = spaceRunRe.ReplaceAllString(s, "_")
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return strings.TrimRight(s, "_")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r)
}
