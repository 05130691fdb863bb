package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	letterhead        = "GOVERNMENT OF INDIA"
	letterheadWord    = "GOVERNMENT"
	notificationLabel = "Notification No."

	headingScanLines = 10
	headingMinLen    = 30
	fallbackMinLen   = 10
	fallbackMaxLines = 3
	simpleLineMinLen = 20
)

// Document is first-page text split once for all subject matchers.
type Document struct {
	Text string
	// Lines holds trimmed, non-blank lines in order.
	Lines []string
}

func NewDocument(text string) Document {
	d := Document{Text: text}
	for _, l := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(l); s != "" {
			d.Lines = append(d.Lines, s)
		}
	}
	return d
}

// hasWord reports whether l has at least one letter or digit. Rule lines
// such as "______" or "* * *" are never subjects.
func hasWord(l string) bool {
	return strings.IndexFunc(l, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// SubjectMatcher is one stage of the subject cascade. The returned subject is
// raw; the extractor normalizes it.
type SubjectMatcher struct {
	Name  string
	Match func(d Document) (string, bool)
}

// AllCapsHeading picks the first long upper-case line near the top of the page
// that is not government letterhead.
var AllCapsHeading = SubjectMatcher{Name: "all-caps-heading", Match: func(d Document) (string, bool) {
	lines := d.Lines
	if len(lines) > headingScanLines {
		lines = lines[:headingScanLines]
	}
	for _, l := range lines {
		if utf8.RuneCountInString(l) <= headingMinLen || !hasWord(l) {
			continue
		}
		if l != strings.ToUpper(l) || strings.Contains(l, letterheadWord) {
			continue
		}
		return l, true
	}
	return "", false
}}

// AfterLetterhead joins the first few substantial lines that follow
// "GOVERNMENT OF INDIA". Without the letterhead the whole page is used.
var AfterLetterhead = SubjectMatcher{Name: "after-letterhead", Match: func(d Document) (string, bool) {
	rest := d.Text
	if i := strings.Index(rest, letterhead); i >= 0 {
		rest = rest[i+len(letterhead):]
	}
	picked := make([]string, 0, fallbackMaxLines)
	for _, l := range strings.Split(rest, "\n") {
		s := strings.TrimSpace(l)
		// length is measured on the untrimmed line
		if !hasWord(s) || utf8.RuneCountInString(l) <= fallbackMinLen || strings.Contains(l, notificationLabel) {
			continue
		}
		picked = append(picked, s)
		if len(picked) == fallbackMaxLines {
			break
		}
	}
	if len(picked) == 0 {
		return "", false
	}
	return strings.Join(picked, " "), true
}}

// FirstLongLine is the simple variant's only heuristic.
var FirstLongLine = SubjectMatcher{Name: "first-long-line", Match: func(d Document) (string, bool) {
	for _, l := range d.Lines {
		if utf8.RuneCountInString(l) > simpleLineMinLen && hasWord(l) && !strings.Contains(l, notificationLabel) {
			return l, true
		}
	}
	return "", false
}}
