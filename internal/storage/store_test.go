package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testDoc struct {
	Items []string `json:"items"`
}

func emptyTestDoc() testDoc {
	return testDoc{Items: []string{}}
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
}

func mustFileStore(t *testing.T, path string) *FileStore[testDoc] {
	t.Helper()
	store, err := NewFileStore(FileConfig[testDoc]{
		Path:  path,
		Empty: emptyTestDoc,
		Clock: fixedClock,
	})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestNewFileStoreRejectsIncompleteConfig(t *testing.T) {
	if _, err := NewFileStore(FileConfig[testDoc]{Empty: emptyTestDoc}); err == nil {
		t.Fatalf("expected error for missing path")
	}
	if _, err := NewFileStore(FileConfig[testDoc]{Path: "x.json"}); err == nil {
		t.Fatalf("expected error for missing empty constructor")
	}
}

func TestLoadInitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "things.json")
	store := mustFileStore(t, path)

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Items) != 0 {
		t.Fatalf("expected empty default, got %v", doc.Items)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("initial file was not written: %v", err)
	}
	if !strings.Contains(string(raw), "\"items\"") {
		t.Fatalf("initial file missing top-level key: %s", raw)
	}
}

func TestLoadQuarantinesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "things.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}
	store := mustFileStore(t, path)

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load should recover, got %v", err)
	}
	if len(doc.Items) != 0 {
		t.Fatalf("expected fresh empty doc, got %v", doc.Items)
	}

	backup := filepath.Join(dir, "things_backup_20260314_092653.json")
	raw, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("expected backup at %s: %v", backup, err)
	}
	if string(raw) != "{not json" {
		t.Fatalf("backup should preserve original bytes, got %q", raw)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("corrupt file should have been moved, stat err = %v", err)
	}
}

func TestSaveWritesDiffableJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "things.json")
	store := mustFileStore(t, path)

	if err := store.Save(testDoc{Items: []string{"Müller & Sons", "a<b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, "Müller & Sons") {
		t.Fatalf("non-ASCII or ampersand was escaped: %s", text)
	}
	if strings.Contains(text, "\\u0026") || strings.Contains(text, "\\u003c") {
		t.Fatalf("HTML escaping should be off: %s", text)
	}
	if !strings.Contains(text, "\n  \"items\"") {
		t.Fatalf("expected two-space indentation: %s", text)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("expected trailing newline")
	}

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Items) != 2 || doc.Items[0] != "Müller & Sons" {
		t.Fatalf("round trip mismatch: %v", doc.Items)
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "things.json")
	store := mustFileStore(t, path)

	if err := store.Save(testDoc{Items: []string{"x"}}); err != nil {
		t.Fatalf("Save into missing dir: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file missing after save: %v", err)
	}
}

func TestMemStoreStartsEmptyAndRetains(t *testing.T) {
	store := NewMemStore(emptyTestDoc)

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Items) != 0 {
		t.Fatalf("expected empty default, got %v", doc.Items)
	}

	if err := store.Save(testDoc{Items: []string{"kept"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err = store.Load()
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if len(doc.Items) != 1 || doc.Items[0] != "kept" {
		t.Fatalf("MemStore lost the document: %v", doc.Items)
	}
	if store.Saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.Saves)
	}
}
