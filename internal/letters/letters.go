// Package letters generates cover letters, elevator pitches, and company
// briefs through the text generator, grounding them in the user's own CV
// when one is named.
package letters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"careerpilot.local/internal/llm"
	"careerpilot.local/internal/stamp"
	"careerpilot.local/internal/tracker"
)

// Format is the cover-letter output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

var (
	// ErrInvalidFormat rejects formats outside the closed enum.
	ErrInvalidFormat = errors.New("letters: invalid format")
	// ErrMissingFields rejects generations without company and position.
	ErrMissingFields = errors.New("letters: company and position are required")
)

// DocumentReader is the slice of the document reader used for CV grounding.
type DocumentReader interface {
	Read(name string) (string, error)
}

// Marker flips the tracker's cover_letter_generated flag after a write.
type Marker interface {
	MarkCoverLetterGenerated(company, position string) (*tracker.ApplicationRecord, bool, error)
}

// Config assembles a Service. Generator and Dir are required; Docs and
// Tracker are optional collaborators.
type Config struct {
	Generator llm.TextGenerator
	Docs      DocumentReader
	Tracker   Marker
	Dir       string
	Candidate string
	Clock     func() time.Time
	Logger    *zap.Logger
}

// Service writes generated letters under its directory.
type Service struct {
	gen       llm.TextGenerator
	docs      DocumentReader
	tracker   Marker
	dir       string
	candidate string
	clock     func() time.Time
	log       *zap.Logger
}

func New(cfg Config) (*Service, error) {
	if cfg.Generator == nil {
		return nil, errors.New("letters: config requires a text generator")
	}
	if cfg.Dir == "" {
		return nil, errors.New("letters: config requires an output directory")
	}
	svc := &Service{
		gen:       cfg.Generator,
		docs:      cfg.Docs,
		tracker:   cfg.Tracker,
		dir:       cfg.Dir,
		candidate: strings.TrimSpace(cfg.Candidate),
		clock:     cfg.Clock,
		log:       cfg.Logger,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.log == nil {
		svc.log = zap.NewNop()
	}
	return svc, nil
}

// CoverLetterParams drive one generation. CVFile names a document to ground
// the letter in; Format defaults to markdown.
type CoverLetterParams struct {
	Company        string
	Position       string
	JobDescription string
	CVFile         string
	Highlights     string
	Format         string
}

// CoverLetterResult reports where the letter landed and whether a matching
// tracker record was flagged.
type CoverLetterResult struct {
	Path   string
	Text   string
	Marked bool
}

// GenerateCoverLetter writes the letter to
// Cover_Letter_<Company>_<Position>_<date>.<ext> under the letters
// directory, then flags the most recent matching application.
func (s *Service) GenerateCoverLetter(ctx context.Context, p CoverLetterParams) (*CoverLetterResult, error) {
	company := strings.TrimSpace(p.Company)
	position := strings.TrimSpace(p.Position)
	if company == "" || position == "" {
		return nil, ErrMissingFields
	}
	format, err := parseFormat(p.Format)
	if err != nil {
		return nil, err
	}

	cvText := ""
	if p.CVFile != "" && s.docs != nil {
		cvText, err = s.docs.Read(p.CVFile)
		if err != nil {
			return nil, fmt.Errorf("letters: read cv: %w", err)
		}
	}

	prompt := s.coverLetterPrompt(company, position, p.JobDescription, cvText, p.Highlights, format)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	text := llm.CleanFences(raw)

	name := fmt.Sprintf("Cover_Letter_%s_%s_%s.%s",
		sanitizeComponent(company), sanitizeComponent(position),
		stamp.Date(s.clock()), extFor(format))
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("letters: create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, fmt.Errorf("letters: write letter: %w", err)
	}

	marked := false
	if s.tracker != nil {
		_, marked, err = s.tracker.MarkCoverLetterGenerated(company, position)
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("cover letter written",
		zap.String("path", path),
		zap.Bool("tracker_marked", marked))
	return &CoverLetterResult{Path: path, Text: text, Marked: marked}, nil
}

// ElevatorPitch produces a short spoken-style pitch for a company.
func (s *Service) ElevatorPitch(ctx context.Context, company, jobDescription string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", errors.New("letters: company is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a 30-second elevator pitch %s can deliver when meeting someone from %s.\n",
		s.candidateName(), company)
	if jd := strings.TrimSpace(jobDescription); jd != "" {
		fmt.Fprintf(&b, "\nThe role under discussion:\n%s\n", jd)
	}
	b.WriteString("\nKeep it under 90 words, first person, confident but specific. Plain text only.")

	raw, err := s.gen.Generate(ctx, b.String())
	if err != nil {
		return "", err
	}
	return llm.CleanFences(raw), nil
}

// CompanyBrief produces a one-page interview prep brief.
func (s *Service) CompanyBrief(ctx context.Context, company, role string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", errors.New("letters: company is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Prepare a short interview brief on %s", company)
	if r := strings.TrimSpace(role); r != "" {
		fmt.Fprintf(&b, " for a %s interview", r)
	}
	b.WriteString(".\n\nCover: what the organization does, recent direction, how the role fits, " +
		"and three questions worth asking. Use markdown with short sections.")

	raw, err := s.gen.Generate(ctx, b.String())
	if err != nil {
		return "", err
	}
	return llm.CleanFences(raw), nil
}

func (s *Service) coverLetterPrompt(company, position, jobDescription, cvText, highlights string, format Format) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a cover letter for %s applying to the %s position at %s.\n",
		s.candidateName(), position, company)
	if jd := strings.TrimSpace(jobDescription); jd != "" {
		fmt.Fprintf(&b, "\nJob description:\n%s\n", jd)
	}
	if cv := strings.TrimSpace(cvText); cv != "" {
		fmt.Fprintf(&b, "\nCandidate CV:\n%s\n", cv)
	}
	if h := strings.TrimSpace(highlights); h != "" {
		fmt.Fprintf(&b, "\nEmphasize:\n%s\n", h)
	}
	b.WriteString("\nThe letter must be specific to this role, grounded in the CV when one is provided, " +
		"and free of invented experience. Three to four paragraphs.\n")
	if format == FormatText {
		b.WriteString("Write plain text only, no markdown syntax.")
	} else {
		b.WriteString("Format the letter as clean markdown.")
	}
	return b.String()
}

func (s *Service) candidateName() string {
	if s.candidate != "" {
		return s.candidate
	}
	return "the candidate"
}

func parseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case "":
		return FormatMarkdown, nil
	case FormatMarkdown, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: markdown, text)", ErrInvalidFormat, raw)
	}
}

func extFor(f Format) string {
	if f == FormatText {
		return "txt"
	}
	return "md"
}

// sanitizeComponent makes a name safe for the letter filename: slashes
// become dashes, spaces become underscores.
func sanitizeComponent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
