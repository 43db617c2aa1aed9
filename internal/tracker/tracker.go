package tracker

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"careerpilot.local/internal/stamp"
	"careerpilot.local/internal/storage"
)

// Config assembles a Service. Store is required; the rest default.
type Config struct {
	Store  storage.Store[Collection]
	Clock  func() time.Time
	NewID  func() string
	Logger *zap.Logger
}

// Service owns the job application collection.
type Service struct {
	store storage.Store[Collection]
	clock func() time.Time
	newID func() string
	log   *zap.Logger
}

// New validates cfg and returns a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("tracker: config requires a store")
	}
	svc := &Service{
		store: cfg.Store,
		clock: cfg.Clock,
		newID: cfg.NewID,
		log:   cfg.Logger,
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	if svc.newID == nil {
		svc.newID = func() string { return uuid.NewString()[:8] }
	}
	if svc.log == nil {
		svc.log = zap.NewNop()
	}
	return svc, nil
}

// AddParams carries the fields of a new application. Status defaults to
// applied, DateApplied to today; Contacts is a comma-separated string.
type AddParams struct {
	Company        string
	Position       string
	Status         string
	DateApplied    string
	Deadline       string
	JobDescription string
	NextAction     string
	Notes          string
	Contacts       string
}

// Add validates, appends and persists a new application record.
func (s *Service) Add(p AddParams) (*ApplicationRecord, error) {
	company := strings.TrimSpace(p.Company)
	position := strings.TrimSpace(p.Position)
	if company == "" || position == "" {
		return nil, ErrMissingFields
	}

	status := StatusApplied
	if strings.TrimSpace(p.Status) != "" {
		parsed, err := parseStatus(p.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	now := s.clock()
	dateApplied := strings.TrimSpace(p.DateApplied)
	if dateApplied == "" {
		dateApplied = stamp.Date(now)
	}

	rec := ApplicationRecord{
		ID:                  s.mintID(doc.Applications),
		Company:             company,
		Position:            position,
		Status:              status,
		DateApplied:         dateApplied,
		ApplicationDeadline: strings.TrimSpace(p.Deadline),
		JobDescription:      strings.TrimSpace(p.JobDescription),
		NextAction:          strings.TrimSpace(p.NextAction),
		Notes:               []Note{},
		Contacts:            splitContacts(p.Contacts),
		LastUpdated:         stamp.Instant(now),
	}
	if text := strings.TrimSpace(p.Notes); text != "" {
		rec.Notes = append(rec.Notes, Note{Date: stamp.Date(now), Text: text})
	}

	doc.Applications = append(doc.Applications, rec)
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	s.log.Info("application added",
		zap.String("id", rec.ID),
		zap.String("company", rec.Company),
		zap.String("position", rec.Position))
	return &rec, nil
}

// UpdateParams selects a record by ID or Company and carries the changes.
// Pointer fields distinguish "leave alone" from "set to this, even empty".
type UpdateParams struct {
	ID                   string
	Company              string
	Status               string
	NextAction           *string
	Notes                string
	CoverLetterGenerated *bool
}

// Update mutates the resolved record. Notes are appended with a date stamp,
// never replaced; last_updated advances on every successful update.
func (s *Service) Update(p UpdateParams) (*ApplicationRecord, error) {
	var status Status
	if strings.TrimSpace(p.Status) != "" {
		parsed, err := parseStatus(p.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	idx, err := resolveApplication(doc.Applications, p.ID, p.Company)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	rec := &doc.Applications[idx]
	if status != "" {
		rec.Status = status
	}
	if p.NextAction != nil {
		rec.NextAction = strings.TrimSpace(*p.NextAction)
	}
	if p.CoverLetterGenerated != nil {
		rec.CoverLetterGenerated = *p.CoverLetterGenerated
	}
	if text := strings.TrimSpace(p.Notes); text != "" {
		rec.Notes = append(rec.Notes, Note{Date: stamp.Date(now), Text: text})
	}
	rec.LastUpdated = stamp.Instant(now)

	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	out := *rec
	s.log.Info("application updated", zap.String("id", out.ID))
	return &out, nil
}

// QueryParams are conjunctive filters over the collection.
type QueryParams struct {
	Status   string
	Company  string // substring, case-insensitive
	DaysBack int    // date_applied within the last N days
	SortBy   string // date_applied (default), last_updated, company, status
}

// Query filters and sorts without mutating. The result is always sorted
// descending; an unrecognized sort key falls back to date_applied.
func (s *Service) Query(p QueryParams) ([]ApplicationRecord, error) {
	var status Status
	if strings.TrimSpace(p.Status) != "" {
		parsed, err := parseStatus(p.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	cutoff := ""
	if p.DaysBack > 0 {
		cutoff = stamp.CutoffDate(s.clock(), p.DaysBack)
	}

	out := make([]ApplicationRecord, 0, len(doc.Applications))
	for _, rec := range doc.Applications {
		if status != "" && rec.Status != status {
			continue
		}
		if p.Company != "" && !containsFold(rec.Company, p.Company) {
			continue
		}
		if cutoff != "" && rec.DateApplied < cutoff {
			continue
		}
		out = append(out, rec)
	}
	sortApplications(out, p.SortBy)
	return out, nil
}

// Delete removes exactly one record, resolved the same way Update resolves.
func (s *Service) Delete(id, company string) (*ApplicationRecord, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	idx, err := resolveApplication(doc.Applications, id, company)
	if err != nil {
		return nil, err
	}

	removed := doc.Applications[idx]
	doc.Applications = append(doc.Applications[:idx], doc.Applications[idx+1:]...)
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	s.log.Info("application deleted",
		zap.String("id", removed.ID),
		zap.String("company", removed.Company))
	return &removed, nil
}

// MarkCoverLetterGenerated flags the most recently updated record matching
// company and position (both case-insensitive). It reports false when no
// record matched; letter generation proceeds either way.
func (s *Service) MarkCoverLetterGenerated(company, position string) (*ApplicationRecord, bool, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, false, err
	}

	best := -1
	for i := range doc.Applications {
		rec := &doc.Applications[i]
		if !strings.EqualFold(rec.Company, strings.TrimSpace(company)) {
			continue
		}
		if !strings.EqualFold(rec.Position, strings.TrimSpace(position)) {
			continue
		}
		if best == -1 || rec.LastUpdated > doc.Applications[best].LastUpdated {
			best = i
		}
	}
	if best == -1 {
		return nil, false, nil
	}

	rec := &doc.Applications[best]
	rec.CoverLetterGenerated = true
	rec.LastUpdated = stamp.Instant(s.clock())
	if err := s.store.Save(doc); err != nil {
		return nil, false, err
	}
	out := *rec
	return &out, true, nil
}

// resolveApplication is the two-key resolver shared by Update and Delete:
// exact id first, else case-insensitive company equality with the greatest
// last_updated winning.
func resolveApplication(apps []ApplicationRecord, id, company string) (int, error) {
	id = strings.TrimSpace(id)
	company = strings.TrimSpace(company)

	switch {
	case id != "":
		for i := range apps {
			if apps[i].ID == id {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: id %q", ErrNotFound, id)
	case company != "":
		best := -1
		for i := range apps {
			if !strings.EqualFold(apps[i].Company, company) {
				continue
			}
			if best == -1 || apps[i].LastUpdated > apps[best].LastUpdated {
				best = i
			}
		}
		if best == -1 {
			return -1, fmt.Errorf("%w: company %q", ErrNotFound, company)
		}
		return best, nil
	default:
		return -1, ErrNoSelector
	}
}

func (s *Service) mintID(apps []ApplicationRecord) string {
	taken := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		taken[a.ID] = struct{}{}
	}
	id := s.newID()
	for {
		if _, dup := taken[id]; !dup {
			return id
		}
		id = s.newID()
	}
}

func splitContacts(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if c := strings.TrimSpace(part); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortApplications(apps []ApplicationRecord, sortBy string) {
	key := func(a ApplicationRecord) string { return a.DateApplied }
	switch strings.ToLower(strings.TrimSpace(sortBy)) {
	case "last_updated":
		key = func(a ApplicationRecord) string { return a.LastUpdated }
	case "company":
		key = func(a ApplicationRecord) string { return a.Company }
	case "status":
		key = func(a ApplicationRecord) string { return string(a.Status) }
	}
	sort.SliceStable(apps, func(i, j int) bool { return key(apps[i]) > key(apps[j]) })
}
