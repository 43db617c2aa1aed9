package stamp

import (
	"testing"
	"time"
)

func TestInstantOrderMatchesTime(t *testing.T) {
	base := time.Date(2026, time.August, 25, 23, 59, 59, 900000000, time.UTC)
	cases := []time.Time{
		base,
		base.Add(10 * time.Microsecond),
		base.Add(time.Second),
		base.Add(time.Hour),
		base.AddDate(0, 0, 1),
		base.AddDate(0, 1, 0),
	}
	for i := 1; i < len(cases); i++ {
		earlier, later := Instant(cases[i-1]), Instant(cases[i])
		if !(earlier < later) {
			t.Fatalf("expected %q < %q", earlier, later)
		}
	}
}

func TestInstantIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, time.January, 1, 2, 0, 0, 0, loc)
	if got := Instant(local); got != "2025-12-31T21:00:00.000000Z" {
		t.Fatalf("Instant(%v) = %q", local, got)
	}
	if got := Date(local); got != "2025-12-31" {
		t.Fatalf("Date(%v) = %q", local, got)
	}
	if got := Month(local); got != "2025-12" {
		t.Fatalf("Month(%v) = %q", local, got)
	}
}

func TestCutoffDate(t *testing.T) {
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	if got := CutoffDate(now, 7); got != "2026-02-24" {
		t.Fatalf("CutoffDate 7 = %q", got)
	}
	if got := CutoffDate(now, 0); got != "2026-03-03" {
		t.Fatalf("CutoffDate 0 = %q", got)
	}
}
