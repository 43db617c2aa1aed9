// Package scratchpad is the agent's append-only working-notes file, for
// thoughts that should survive the session without belonging to any tracker
// record.
package scratchpad

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const stampLayout = "2006-01-02 15:04"

// EmptyMessage is returned by Read when there is nothing on the pad yet.
const EmptyMessage = "Scratchpad is empty."

// Pad appends timestamped lines to a single text file.
type Pad struct {
	path  string
	clock func() time.Time
}

func New(path string, clock func() time.Time) *Pad {
	if clock == nil {
		clock = time.Now
	}
	return &Pad{path: path, clock: clock}
}

// Append writes one "[date time] text" line to the pad, creating the file
// and its directory on first use.
func (p *Pad) Append(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("scratchpad: nothing to write")
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("scratchpad: create directory: %w", err)
		}
	}
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("scratchpad: open: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", p.clock().UTC().Format(stampLayout), text)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("scratchpad: write: %w", err)
	}
	return nil
}

// Read returns the whole pad, or EmptyMessage when nothing has been written.
func (p *Pad) Read() (string, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return EmptyMessage, nil
	}
	if err != nil {
		return "", fmt.Errorf("scratchpad: read: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(text) == "" {
		return EmptyMessage, nil
	}
	return text, nil
}
