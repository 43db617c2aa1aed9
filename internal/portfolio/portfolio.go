// Package portfolio renders a shareable markdown summary of the whole
// search: application counts, outreach state, discovered opportunities, and
// the referral network. A QR code can point at wherever the summary is
// published.
package portfolio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"careerpilot.local/internal/discovery"
	"careerpilot.local/internal/outreach"
	"careerpilot.local/internal/stamp"
	"careerpilot.local/internal/tracker"
)

const recentApplications = 5

// Config assembles a Service from the three data services.
type Config struct {
	Tracker   *tracker.Service
	Outreach  *outreach.Service
	Discovery *discovery.Service
	Candidate string
	Clock     func() time.Time
	Logger    *zap.Logger
}

type Service struct {
	tracker   *tracker.Service
	outreach  *outreach.Service
	discovery *discovery.Service
	candidate string
	clock     func() time.Time
	log       *zap.Logger
}

func New(cfg Config) (*Service, error) {
	if cfg.Tracker == nil || cfg.Outreach == nil || cfg.Discovery == nil {
		return nil, errors.New("portfolio: config requires tracker, outreach, and discovery services")
	}
	svc := &Service{
		tracker:   cfg.Tracker,
		outreach:  cfg.Outreach,
		discovery: cfg.Discovery,
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

// Build renders the markdown summary from current state.
func (s *Service) Build() (string, error) {
	apps, err := s.tracker.Query(tracker.QueryParams{SortBy: "last_updated"})
	if err != nil {
		return "", err
	}
	emails, err := s.outreach.Query(outreach.QueryParams{})
	if err != nil {
		return "", err
	}
	awaiting, err := s.outreach.Query(outreach.QueryParams{AwaitingResponse: true})
	if err != nil {
		return "", err
	}
	jobs, err := s.discovery.QueryOpportunities(discovery.QueryParams{})
	if err != nil {
		return "", err
	}
	graph, _, err := s.outreach.Graph()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	title := "# Career Portfolio"
	if s.candidate != "" {
		title += " — " + s.candidate
	}
	fmt.Fprintf(&b, "%s\n\n_Generated %s_\n", title, stamp.Date(s.clock()))

	b.WriteString("\n## At a Glance\n\n")
	fmt.Fprintf(&b, "- **Applications:** %d%s\n", len(apps), statusBreakdown(apps))
	responded := 0
	for i := range emails {
		if emails[i].Responded() {
			responded++
		}
	}
	fmt.Fprintf(&b, "- **Cold outreach:** %d contacts, %d responded, %d awaiting reply\n",
		len(emails), responded, len(awaiting))
	applied := 0
	for _, j := range jobs {
		if j.Applied {
			applied++
		}
	}
	fmt.Fprintf(&b, "- **Opportunities:** %d discovered, %d applied to\n", len(jobs), applied)

	if len(apps) > 0 {
		b.WriteString("\n## Recent Applications\n\n")
		b.WriteString("| Company | Position | Status | Applied |\n")
		b.WriteString("|---|---|---|---|\n")
		shown := apps
		if len(shown) > recentApplications {
			shown = shown[:recentApplications]
		}
		for _, a := range shown {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", a.Company, a.Position, a.Status, a.DateApplied)
		}
	}

	if len(awaiting) > 0 {
		b.WriteString("\n## Awaiting Response\n\n")
		for _, e := range awaiting {
			line := "- " + e.RecipientName
			if e.Institution != "" {
				line += " (" + e.Institution + ")"
			}
			line += " — sent " + e.DateSent
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n## Referral Network\n\n")
	fmt.Fprintf(&b, "```mermaid\n%s\n```\n", graph)

	s.log.Info("portfolio built",
		zap.Int("applications", len(apps)),
		zap.Int("contacts", len(emails)))
	return b.String(), nil
}

// WriteQR emits a PNG encoding url, for sharing a published portfolio.
func (s *Service) WriteQR(url, path string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("portfolio: url is required")
	}
	if err := qrcode.WriteFile(url, qrcode.Medium, 256, path); err != nil {
		return fmt.Errorf("portfolio: write qr code: %w", err)
	}
	s.log.Info("qr code written", zap.String("path", path))
	return nil
}

// statusBreakdown summarizes non-zero status counts in lifecycle order.
func statusBreakdown(apps []tracker.ApplicationRecord) string {
	counts := map[tracker.Status]int{}
	for _, a := range apps {
		counts[a.Status]++
	}
	order := []tracker.Status{
		tracker.StatusApplied,
		tracker.StatusInterviewScheduled,
		tracker.StatusInterviewed,
		tracker.StatusRejected,
		tracker.StatusOffer,
		tracker.StatusAccepted,
	}
	var parts []string
	for _, status := range order {
		if n := counts[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
