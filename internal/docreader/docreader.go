// Package docreader extracts plain text from files in the documents
// directory so the agent can ground answers and letters in the user's own
// CV and notes.
package docreader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	// ErrNotFound means the named document does not exist.
	ErrNotFound = errors.New("docreader: document not found")
	// ErrOutsideDir rejects names that try to leave the documents directory.
	ErrOutsideDir = errors.New("docreader: name must be a plain file name")
	// ErrUnsupported rejects extensions the reader cannot extract.
	ErrUnsupported = errors.New("docreader: unsupported file type")
)

// Reader reads documents out of a single directory.
type Reader struct {
	dir string
}

func New(dir string) *Reader {
	return &Reader{dir: dir}
}

// Read extracts plain text from the named document. Supported extensions
// are .pdf, .docx, .txt, and .md; anything else is rejected before any IO.
func (r *Reader) Read(name string) (string, error) {
	path, err := r.resolve(name)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md", ".pdf", ".docx":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}

	switch ext {
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDocxText(data)
	default:
		return string(data), nil
	}
}

// List names the readable documents, sorted.
func (r *Reader) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md", ".pdf", ".docx":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// resolve confines name to the documents directory.
func (r *Reader) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrOutsideDir, name)
	}
	return filepath.Join(r.dir, name), nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, _ := page.GetPlainText(nil)
		text.WriteString(content)
	}
	return text.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return doc.Editable().GetContent(), nil
}
