package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateMatcher is one stage of the date cascade. Match returns the raw date
// text and true when the stage recognises a date in text.
type DateMatcher struct {
	Name  string
	Match func(text string) (string, bool)
}

var (
	// "Dated 15/08/2025", "Date: 1.2.2024", "No. 05-11-2025"
	keywordDateRe = regexp.MustCompile(`(?i)(?:Dated|Date|No\.\s*)\s*[:\s]*(\d{1,2}[./-]\d{1,2}[./-]\d{4})`)
	// "5th November, 2025", "1 January, 2024"
	spelledDateRe = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December),\s+(\d{4})`)
)

// KeywordDate captures a numeric date that follows Dated, Date, or No.
// The match is returned verbatim.
var KeywordDate = DateMatcher{Name: "keyword", Match: func(text string) (string, bool) {
	m := keywordDateRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}}

// SpelledDate recognises "Day Month, Year" and rewrites it as DD/MM/YYYY.
var SpelledDate = DateMatcher{Name: "spelled", Match: func(text string) (string, bool) {
	m := spelledDateRe.FindStringSubmatch(text)
	if len(m) != 4 {
		return "", false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	month, ok := monthNumber(m[2])
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%s", day, month, m[3]), true
}}

// DefaultDateMatchers returns the cascade in priority order.
func DefaultDateMatchers() []DateMatcher {
	return []DateMatcher{KeywordDate, SpelledDate}
}

func monthNumber(name string) (int, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return int(m), true
		}
	}
	return 0, false
}
