// Package storage persists the agent's record collections as whole-file
// JSON documents. A document that fails to parse is moved aside to a
// timestamped backup and replaced by an empty default, so a corrupt file
// never takes a tracker down.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store persists one named JSON document.
type Store[T any] interface {
	Load() (T, error)
	Save(T) error
}

// FileConfig assembles a FileStore.
type FileConfig[T any] struct {
	// Path is the backing file, conventionally <data dir>/<name>.json.
	Path string
	// Empty produces the document's empty default.
	Empty func() T
	// Clock stamps quarantine backups. Defaults to time.Now.
	Clock func() time.Time
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// FileStore is the durable Store implementation. Writes replace the whole
// file; there is no locking, so concurrent processes race last-writer-wins.
type FileStore[T any] struct {
	path  string
	empty func() T
	clock func() time.Time
	log   *zap.Logger
}

// NewFileStore validates cfg and returns a FileStore.
func NewFileStore[T any](cfg FileConfig[T]) (*FileStore[T], error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage: file store requires a path")
	}
	if cfg.Empty == nil {
		return nil, errors.New("storage: file store requires an empty-document constructor")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore[T]{path: cfg.Path, empty: cfg.Empty, clock: clock, log: log}, nil
}

// Load reads and parses the document. A missing file is initialized with
// the empty default; a malformed one is quarantined and replaced by the
// empty default without error.
func (s *FileStore[T]) Load() (T, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc := s.empty()
		if saveErr := s.Save(doc); saveErr != nil {
			return doc, saveErr
		}
		return doc, nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.quarantine(err)
		return s.empty(), nil
	}
	return doc, nil
}

// Save overwrites the backing file with the pretty-printed document.
func (s *FileStore[T]) Save(doc T) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// quarantine renames the unreadable file to <name>_backup_YYYYMMDD_HHMMSS.json
// so the evidence survives reinitialization.
func (s *FileStore[T]) quarantine(cause error) {
	stamp := s.clock().UTC().Format("20060102_150405")
	ext := filepath.Ext(s.path)
	backup := strings.TrimSuffix(s.path, ext) + "_backup_" + stamp + ext

	if err := os.Rename(s.path, backup); err != nil {
		s.log.Warn("corrupt data file could not be moved aside",
			zap.String("path", s.path),
			zap.Error(err))
		return
	}
	s.log.Warn("corrupt data file moved aside, starting fresh",
		zap.String("path", s.path),
		zap.String("backup", backup),
		zap.NamedError("cause", cause))
}
