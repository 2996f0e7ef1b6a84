package monthkey

import (
	"testing"
	"time"
)

func TestParseValid(t *testing.T) {
	k, err := Parse("3/2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Month != 3 || k.Year != 2025 {
		t.Fatalf("got %+v, want month 3 year 2025", k)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"", "3", "13/2025", "0/2025", "x/2025", "3/y", "3/2025/1", "3/0"}
	for _, marker := range cases {
		if _, err := Parse(marker); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", marker)
		}
	}
}

func TestNextWrapsYear(t *testing.T) {
	k, _ := Parse("12/2025")
	if got := k.Next().String(); got != "1/2026" {
		t.Fatalf("Next(12/2025) = %q, want 1/2026", got)
	}
}

func TestNextWithinYear(t *testing.T) {
	k, _ := Parse("1/2025")
	if got := k.Next().String(); got != "2/2025" {
		t.Fatalf("Next(1/2025) = %q, want 2/2025", got)
	}
}

func TestDiff(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"11/2024", "2/2025", 3},
		{"1/2025", "1/2025", 0},
		{"1/2025", "3/2025", 2},
		{"3/2025", "1/2025", -2},
		{"12/2020", "1/2021", 1},
	}
	for _, c := range cases {
		start, _ := Parse(c.start)
		end, _ := Parse(c.end)
		if got := Diff(start, end); got != c.want {
			t.Errorf("Diff(%q,%q) = %d, want %d", c.start, c.end, got, c.want)
		}
	}
}

func TestFirstOfMonth(t *testing.T) {
	k, _ := Parse("3/2025")
	if got := k.FirstOfMonth(); got != "3/1/2025" {
		t.Fatalf("FirstOfMonth = %q, want 3/1/2025", got)
	}
	k, _ = Parse("12/2026")
	if got := k.FirstOfMonth(); got != "12/1/2026" {
		t.Fatalf("FirstOfMonth = %q, want 12/1/2026", got)
	}
}

func TestCurrent(t *testing.T) {
	ts := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	if got := Current(ts).String(); got != "3/2025" {
		t.Fatalf("Current = %q, want 3/2025", got)
	}
}

func TestYearOf(t *testing.T) {
	year, err := YearOf("3/1/2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if year != 2025 {
		t.Fatalf("YearOf = %d, want 2025", year)
	}
	if _, err := YearOf("not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
