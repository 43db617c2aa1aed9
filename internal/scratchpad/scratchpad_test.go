package scratchpad

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestPad(t *testing.T) (*Pad, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "notes", "agent_scratchpad.txt")
	return New(path, clock.Now), clock
}

func TestAppendAndRead(t *testing.T) {
	pad, clock := newTestPad(t)

	if err := pad.Append("user prefers remote roles"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	clock.now = clock.now.Add(26 * time.Minute)
	if err := pad.Append("follow up with Dr. Chen next week"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := pad.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("pad = %q", got)
	}
	if lines[0] != "[2026-08-25 10:00] user prefers remote roles" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != "[2026-08-25 10:26] follow up with Dr. Chen next week" {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestReadEmptyPad(t *testing.T) {
	pad, _ := newTestPad(t)
	got, err := pad.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != EmptyMessage {
		t.Fatalf("got %q", got)
	}
}

func TestAppendRejectsBlankText(t *testing.T) {
	pad, _ := newTestPad(t)
	if err := pad.Append("   "); err == nil {
		t.Fatal("blank append should fail")
	}
	if got, _ := pad.Read(); got != EmptyMessage {
		t.Fatalf("pad = %q after rejected append", got)
	}
}

func TestTimestampsAreUTC(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*60*60)
	clock := &fakeClock{now: time.Date(2026, time.August, 25, 15, 0, 0, 0, zone)}
	pad := New(filepath.Join(t.TempDir(), "pad.txt"), clock.Now)

	if err := pad.Append("note"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, _ := pad.Read()
	if !strings.HasPrefix(got, "[2026-08-25 10:00]") {
		t.Fatalf("line = %q, want UTC timestamp", got)
	}
}
