package extract

import (
	"strings"
)

// Variant selects one of the two subject strategies observed in the field.
// They differ in heuristics, truncation length, and what happens when no
// heuristic matches.
type Variant string

const (
	// Standard tries the all-caps heading and then the post-letterhead lines.
	// No match leaves the subject absent.
	Standard Variant = "standard"
	// Simple takes the first long line and falls back to a generic subject.
	Simple Variant = "simple"
)

const (
	// SentinelNotFound is what the standard variant reports in logs when no
	// subject heuristic matched. It never reaches a filename.
	SentinelNotFound = "Subject_Not_Found"
	// GenericSubject is the simple variant's found-but-generic subject.
	GenericSubject = "Generic_Subject"

	StandardMaxSubjectLen = 80
	SimpleMaxSubjectLen   = 50
)

// ParseVariant maps a config string to a Variant. Empty means Standard.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Standard), "rich", "richer":
		return Standard, true
	case string(Simple):
		return Simple, true
	}
	return "", false
}

// Result is what the extractor recovered from first-page text. Empty fields
// mean absent.
type Result struct {
	// RawDate is DD/MM/YYYY-like text, not yet normalized.
	RawDate string
	// DateMatcher names the date matcher that fired.
	DateMatcher string
	// Subject is already normalized for use in a filename.
	Subject string
	// SubjectMatcher names the subject matcher that fired.
	SubjectMatcher string
	// Generic is set when Subject is the simple variant's placeholder.
	Generic bool
}

func (r Result) HasDate() bool    { return r.RawDate != "" }
func (r Result) HasSubject() bool { return r.Subject != "" }

// Extractor runs the date and subject cascades over first-page text.
type Extractor struct {
	Variant Variant
	// MaxSubjectLen overrides the variant's truncation length when > 0.
	MaxSubjectLen int
	// DateMatchers and SubjectMatchers override the variant defaults when set.
	DateMatchers    []DateMatcher
	SubjectMatchers []SubjectMatcher
}

// New returns an Extractor with the default cascades for v.
func New(v Variant) *Extractor {
	return &Extractor{Variant: v}
}

// MaxLen is the effective subject length bound.
func (e *Extractor) MaxLen() int {
	if e.MaxSubjectLen > 0 {
		return e.MaxSubjectLen
	}
	if e.Variant == Simple {
		return SimpleMaxSubjectLen
	}
	return StandardMaxSubjectLen
}

func (e *Extractor) dateMatchers() []DateMatcher {
	if len(e.DateMatchers) > 0 {
		return e.DateMatchers
	}
	return DefaultDateMatchers()
}

func (e *Extractor) subjectMatchers() []SubjectMatcher {
	if len(e.SubjectMatchers) > 0 {
		return e.SubjectMatchers
	}
	if e.Variant == Simple {
		return []SubjectMatcher{FirstLongLine}
	}
	return []SubjectMatcher{AllCapsHeading, AfterLetterhead}
}

// Extract is a pure function of text: it never does I/O.
func (e *Extractor) Extract(text string) Result {
	var res Result
	for _, m := range e.dateMatchers() {
		if d, ok := m.Match(text); ok {
			res.RawDate = d
			res.DateMatcher = m.Name
			break
		}
	}

	// The first matcher that fires decides the subject. A candidate that
	// normalizes to nothing leaves the subject absent.
	doc := NewDocument(text)
	for _, m := range e.subjectMatchers() {
		s, ok := m.Match(doc)
		if !ok {
			continue
		}
		if n := NormalizeSubject(s, e.MaxLen()); n != "" {
			res.Subject = n
			res.SubjectMatcher = m.Name
		}
		break
	}
	if res.Subject == "" && e.Variant == Simple {
		res.Subject = NormalizeSubject(GenericSubject, e.MaxLen())
		res.SubjectMatcher = "generic"
		res.Generic = true
	}
	return res
}

// Sentinel is the placeholder this variant would have used for a missing
// subject. Logging only.
func (e *Extractor) Sentinel() string {
	if e.Variant == Simple {
		return GenericSubject
	}
	return SentinelNotFound
}
