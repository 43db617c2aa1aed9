package letters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"careerpilot.local/internal/storage"
	"careerpilot.local/internal/tracker"
)

type fakeGen struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeDocs map[string]string

func (f fakeDocs) Read(name string) (string, error) {
	text, ok := f[name]
	if !ok {
		return "", fmt.Errorf("document not found: %s", name)
	}
	return text, nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, gen *fakeGen, docs DocumentReader, marker Marker) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := New(Config{
		Generator: gen,
		Docs:      docs,
		Tracker:   marker,
		Dir:       dir,
		Candidate: "Jordan Blake",
		Clock:     fixedClock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, dir
}

func newMarkerService(t *testing.T) *tracker.Service {
	t.Helper()
	svc, err := tracker.New(tracker.Config{
		Store: storage.NewMemStore(tracker.EmptyCollection),
		Clock: fixedClock,
	})
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	return svc
}

func TestGenerateCoverLetterWritesFileAndMarksTracker(t *testing.T) {
	gen := &fakeGen{reply: "```markdown\nDear Hiring Team,\n\nI am excited to apply.\n```"}
	marker := newMarkerService(t)
	if _, err := marker.Add(tracker.AddParams{Company: "Acme Corp", Position: "Research Engineer"}); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	svc, dir := newTestService(t, gen, fakeDocs{"cv.txt": "PhD in robotics."}, marker)

	res, err := svc.GenerateCoverLetter(context.Background(), CoverLetterParams{
		Company:        "Acme Corp",
		Position:       "Research Engineer",
		JobDescription: "Build planning systems.",
		CVFile:         "cv.txt",
	})
	if err != nil {
		t.Fatalf("GenerateCoverLetter: %v", err)
	}

	wantPath := filepath.Join(dir, "Cover_Letter_Acme_Corp_Research_Engineer_2026-08-25.md")
	if res.Path != wantPath {
		t.Fatalf("path = %q, want %q", res.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read letter: %v", err)
	}
	if string(data) != "Dear Hiring Team,\n\nI am excited to apply." {
		t.Fatalf("letter content = %q, fences should be stripped", data)
	}
	if !res.Marked {
		t.Fatal("matching application was not flagged")
	}

	prompt := gen.prompts[0]
	for _, part := range []string{"Jordan Blake", "Research Engineer", "Acme Corp", "Build planning systems.", "PhD in robotics."} {
		if !strings.Contains(prompt, part) {
			t.Fatalf("prompt missing %q:\n%s", part, prompt)
		}
	}

	apps, err := marker.Query(tracker.QueryParams{Company: "Acme Corp"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !apps[0].CoverLetterGenerated {
		t.Fatal("tracker record cover_letter_generated still false")
	}
}

func TestGenerateCoverLetterTextFormat(t *testing.T) {
	gen := &fakeGen{reply: "Dear Hiring Team,"}
	svc, dir := newTestService(t, gen, nil, nil)

	res, err := svc.GenerateCoverLetter(context.Background(), CoverLetterParams{
		Company: "Acme", Position: "Engineer", Format: "TEXT",
	})
	if err != nil {
		t.Fatalf("GenerateCoverLetter: %v", err)
	}
	if filepath.Ext(res.Path) != ".txt" {
		t.Fatalf("path = %q, want .txt", res.Path)
	}
	if res.Marked {
		t.Fatal("Marked without a tracker collaborator")
	}
	if !strings.Contains(gen.prompts[0], "plain text only") {
		t.Fatalf("prompt = %q", gen.prompts[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "Cover_Letter_Acme_Engineer_2026-08-25.txt")); err != nil {
		t.Fatalf("letter file: %v", err)
	}
}

func TestGenerateCoverLetterSanitizesFilename(t *testing.T) {
	gen := &fakeGen{reply: "letter"}
	svc, dir := newTestService(t, gen, nil, nil)

	res, err := svc.GenerateCoverLetter(context.Background(), CoverLetterParams{
		Company: "AI/ML Lab", Position: "Sr Engineer",
	})
	if err != nil {
		t.Fatalf("GenerateCoverLetter: %v", err)
	}
	want := filepath.Join(dir, "Cover_Letter_AI-ML_Lab_Sr_Engineer_2026-08-25.md")
	if res.Path != want {
		t.Fatalf("path = %q, want %q", res.Path, want)
	}
}

func TestGenerateCoverLetterRejectsBadFormat(t *testing.T) {
	svc, _ := newTestService(t, &fakeGen{reply: "x"}, nil, nil)
	_, err := svc.GenerateCoverLetter(context.Background(), CoverLetterParams{
		Company: "Acme", Position: "Engineer", Format: "pdf",
	})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestGenerateCoverLetterRequiredFields(t *testing.T) {
	svc, _ := newTestService(t, &fakeGen{reply: "x"}, nil, nil)
	for _, p := range []CoverLetterParams{
		{Position: "Engineer"},
		{Company: "Acme"},
	} {
		if _, err := svc.GenerateCoverLetter(context.Background(), p); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("params %+v err = %v, want ErrMissingFields", p, err)
		}
	}
}

func TestGenerateCoverLetterMissingCVFails(t *testing.T) {
	gen := &fakeGen{reply: "x"}
	svc, _ := newTestService(t, gen, fakeDocs{}, nil)

	_, err := svc.GenerateCoverLetter(context.Background(), CoverLetterParams{
		Company: "Acme", Position: "Engineer", CVFile: "ghost.pdf",
	})
	if err == nil || !strings.Contains(err.Error(), "ghost.pdf") {
		t.Fatalf("err = %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("generator called despite CV read failure")
	}
}

func TestElevatorPitch(t *testing.T) {
	gen := &fakeGen{reply: "```\nHi, I'm Jordan.\n```"}
	svc, _ := newTestService(t, gen, nil, nil)

	got, err := svc.ElevatorPitch(context.Background(), "Acme", "Planning role.")
	if err != nil {
		t.Fatalf("ElevatorPitch: %v", err)
	}
	if got != "Hi, I'm Jordan." {
		t.Fatalf("pitch = %q", got)
	}
	if !strings.Contains(gen.prompts[0], "Acme") || !strings.Contains(gen.prompts[0], "Planning role.") {
		t.Fatalf("prompt = %q", gen.prompts[0])
	}

	if _, err := svc.ElevatorPitch(context.Background(), "  ", ""); err == nil {
		t.Fatal("pitch without a company should fail")
	}
}

func TestCompanyBrief(t *testing.T) {
	gen := &fakeGen{reply: "# Acme\n\nWhat they do."}
	svc, _ := newTestService(t, gen, nil, nil)

	got, err := svc.CompanyBrief(context.Background(), "Acme", "research scientist")
	if err != nil {
		t.Fatalf("CompanyBrief: %v", err)
	}
	if !strings.HasPrefix(got, "# Acme") {
		t.Fatalf("brief = %q", got)
	}
	if !strings.Contains(gen.prompts[0], "research scientist") {
		t.Fatalf("prompt = %q", gen.prompts[0])
	}
}
