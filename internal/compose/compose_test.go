package compose

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

func TestDatePrefix_NumericForms(t *testing.T) {
	cases := map[string]string{
		"15/08/2025": "2025-08-15",
		"15-08-2025": "2025-08-15",
		"15.08.2025": "2025-08-15",
		"5/8/2025":   "2025-08-05",
		"05/11/2025": "2025-11-05",
		"1.2-2024":   "2024-02-01",
	}
	for raw, want := range cases {
		got, fellBack, err := DatePrefix(raw, fixedNow)
		if err != nil || fellBack {
			t.Fatalf("%q: unexpected fallback err=%v", raw, err)
		}
		if got != want {
			t.Fatalf("%q: got %q want %q", raw, got, want)
		}
		if len(got) != 10 {
			t.Fatalf("%q: prefix must be 10 chars, got %q", raw, got)
		}
	}
}

func TestDatePrefix_AllDaysZeroPadded(t *testing.T) {
	for d := 1; d <= 28; d++ {
		for m := 1; m <= 12; m++ {
			raw := fmt.Sprintf("%d/%d/2024", d, m)
			got, _, err := DatePrefix(raw, fixedNow)
			if err != nil {
				t.Fatalf("%q: %v", raw, err)
			}
			if want := fmt.Sprintf("2024-%02d-%02d", m, d); got != want {
				t.Fatalf("%q: got %q want %q", raw, got, want)
			}
		}
	}
}

func TestDatePrefix_MalformedFallsBack(t *testing.T) {
	for _, raw := range []string{"99/99/9999", "31/02/2025", "", "15/13/2025", "garbage"} {
		got, fellBack, err := DatePrefix(raw, fixedNow)
		if !fellBack {
			t.Fatalf("%q: expected fallback", raw)
		}
		if !errors.Is(err, ErrDateParse) {
			t.Fatalf("%q: expected ErrDateParse, got %v", raw, err)
		}
		if got != "2026-03-04" {
			t.Fatalf("%q: expected current date, got %q", raw, got)
		}
	}
}

func TestCompose(t *testing.T) {
	n, err := Compose("15/08/2025", "EXEMPTION_FROM_CENTRAL_GOODS_AND_TAX", fixedNow)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n.Filename != "2025-08-15_EXEMPTION_FROM_CENTRAL_GOODS_AND_TAX.pdf" {
		t.Fatalf("unexpected filename %q", n.Filename)
	}
	if n.FellBack {
		t.Fatal("unexpected fallback")
	}

	n, err = Compose("99/99/9999", "Subject", fixedNow)
	if err == nil || !n.FellBack {
		t.Fatalf("expected fallback with warning, got %+v err=%v", n, err)
	}
	if n.Filename != "2026-03-04_Subject.pdf" {
		t.Fatalf("unexpected fallback filename %q", n.Filename)
	}
}

func TestPrefixSortsChronologically(t *testing.T) {
	a, _, _ := DatePrefix("9/12/2024", fixedNow)
	b, _, _ := DatePrefix("10/1/2025", fixedNow)
	if !(a < b) {
		t.Fatalf("expected %q < %q", a, b)
	}
}
