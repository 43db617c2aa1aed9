package docreader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReader(t *testing.T) (*Reader, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir), dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestReadPlainText(t *testing.T) {
	r, dir := newTestReader(t)
	writeFile(t, dir, "cv.txt", "PhD candidate, distributed systems.")
	writeFile(t, dir, "notes.md", "# Research statement\n\nDraft.")

	got, err := r.Read("cv.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "PhD candidate, distributed systems." {
		t.Fatalf("content = %q", got)
	}

	got, err = r.Read("notes.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.HasPrefix(got, "# Research statement") {
		t.Fatalf("content = %q", got)
	}
}

func TestReadMissingFile(t *testing.T) {
	r, _ := newTestReader(t)
	if _, err := r.Read("ghost.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReadRejectsUnsupportedExtension(t *testing.T) {
	r, dir := newTestReader(t)
	writeFile(t, dir, "data.xlsx", "not really a spreadsheet")

	if _, err := r.Read("data.xlsx"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestReadRejectsPathEscapes(t *testing.T) {
	r, _ := newTestReader(t)
	for _, name := range []string{"", ".", "..", "../secret.txt", "sub/cv.txt", "/etc/passwd"} {
		if _, err := r.Read(name); !errors.Is(err, ErrOutsideDir) {
			t.Fatalf("Read(%q) err = %v, want ErrOutsideDir", name, err)
		}
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	r, dir := newTestReader(t)
	writeFile(t, dir, "resume.pdf", "%PDF-1.4 stub")
	writeFile(t, dir, "cv.txt", "text")
	writeFile(t, dir, "data.xlsx", "skip me")
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	names, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"cv.txt", "resume.pdf"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope"))
	names, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("names = %v", names)
	}
}
