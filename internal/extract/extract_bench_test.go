package extract

import (
	"strings"
	"testing"
)

// Benchmark the full cascade on a page that only matches late fallbacks.
func BenchmarkExtract(b *testing.B) {
	page := strings.Repeat("lorem ipsum dolor sit amet consectetur\n", 60) +
		"GOVERNMENT OF INDIA\nSeeks to amend the rules\non 5th November, 2025\n"
	e := New(Standard)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = e.Extract(page)
	}
}

func BenchmarkNormalizeSubject(b *testing.B) {
	s := strings.Repeat("Seeks to amend (rule) 138; ", 10)
	for i := 0; i < b.N; i++ {
		_ = NormalizeSubject(s, StandardMaxSubjectLen)
	}
}
