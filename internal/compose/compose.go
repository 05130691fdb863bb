// Package compose turns extracted fields into the archive filename
// YYYY-MM-DD_<subject>.pdf. The 10-character ISO prefix keeps lexical order
// equal to chronological order.
package compose

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// PrefixLayout formats the date prefix.
	PrefixLayout = "2006-01-02"
	// rawLayout accepts one or two digit day and month.
	rawLayout = "2/1/2006"
	Extension = ".pdf"
)

// ErrDateParse marks a raw date that is absent or not DD/MM/YYYY. It is never
// fatal: the caller falls back to the current date.
var ErrDateParse = errors.New("date parse")

// Name is a composed archive filename and how its date prefix was obtained.
type Name struct {
	Prefix   string
	Subject  string
	Filename string
	// FellBack is true when the prefix is the current date.
	FellBack bool
}

// ParseRawDate reads DD/MM/YYYY with any mix of '/', '-' and '.' separators.
func ParseRawDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: no date", ErrDateParse)
	}
	s = strings.NewReplacer("-", "/", ".", "/").Replace(s)
	t, err := time.Parse(rawLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrDateParse, raw, err)
	}
	return t, nil
}

// DatePrefix returns the YYYY-MM-DD prefix for raw. When raw cannot be parsed
// the prefix is taken from now, fellBack is true and err explains why.
func DatePrefix(raw string, now time.Time) (prefix string, fellBack bool, err error) {
	t, err := ParseRawDate(raw)
	if err != nil {
		return now.Format(PrefixLayout), true, err
	}
	return t.Format(PrefixLayout), false, nil
}

// Filename joins a date prefix and a normalized subject.
func Filename(prefix, subject string) string {
	return prefix + "_" + subject + Extension
}

// Compose builds the archive name. The returned error is only informational
// (a date fallback happened); Name is always usable.
func Compose(raw, subject string, now time.Time) (Name, error) {
	prefix, fellBack, err := DatePrefix(raw, now)
	return Name{
		Prefix:   prefix,
		Subject:  subject,
		Filename: Filename(prefix, subject),
		FellBack: fellBack,
	}, err
}
