package outreach

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

// Service owns the cold-email collection.
type Service struct {
	store storage.Store[Collection]
	clock func() time.Time
	newID func() string
	log   *zap.Logger
}

// New validates cfg and returns a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("outreach: config requires a store")
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

// AddParams carries a new touch against a contact. DateSent defaults to
// today; ConnectionStrength 0 means unspecified (treated as the default 1
// on creation, ignored on merge).
type AddParams struct {
	RecipientName      string
	RecipientEmail     string
	Institution        string
	Subject            string
	Purpose            string
	DateSent           string
	Notes              string
	ReferredBy         string
	ConnectionStrength int
}

// UpsertResult reports what Add did: Created is true for a brand-new
// contact, otherwise Changed names the fields the existing record absorbed
// (empty means the call carried no new information).
type UpsertResult struct {
	Record  *ColdEmailRecord
	Created bool
	Changed []string
}

// Add records a touch. An unknown email creates a contact; a known one
// (case-insensitive) merges into the existing record instead.
func (s *Service) Add(p AddParams) (*UpsertResult, error) {
	name := strings.TrimSpace(p.RecipientName)
	email := strings.TrimSpace(p.RecipientEmail)
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}

	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	now := s.clock()
	dateSent := strings.TrimSpace(p.DateSent)
	if dateSent == "" {
		dateSent = stamp.Date(now)
	}

	for i := range doc.Emails {
		if strings.EqualFold(doc.Emails[i].RecipientEmail, email) {
			return s.merge(doc, i, p, dateSent, now)
		}
	}

	rec := ColdEmailRecord{
		ID:                 s.mintID(doc.Emails),
		RecipientName:      name,
		RecipientEmail:     email,
		Institution:        strings.TrimSpace(p.Institution),
		Subject:            strings.TrimSpace(p.Subject),
		Purpose:            strings.TrimSpace(p.Purpose),
		DateSent:           dateSent,
		Status:             StatusSent,
		ResponseDate:       "",
		FollowUpDates:      []string{},
		Notes:              []Note{},
		LastUpdated:        stamp.Instant(now),
		ReferredBy:         strings.TrimSpace(p.ReferredBy),
		ConnectionStrength: clampStrength(p.ConnectionStrength),
	}
	if text := strings.TrimSpace(p.Notes); text != "" {
		rec.Notes = append(rec.Notes, Note{Date: stamp.Date(now), Text: text})
	}

	doc.Emails = append(doc.Emails, rec)
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	s.log.Info("cold email added",
		zap.String("id", rec.ID),
		zap.String("recipient", rec.RecipientEmail))
	return &UpsertResult{Record: &rec, Created: true}, nil
}

// merge folds a repeat add into the existing record. Repeat adds count as
// additional touches: both the record's original send date and the incoming
// one end up in follow_up_dates, each exact date at most once.
func (s *Service) merge(doc Collection, idx int, p AddParams, dateSent string, now time.Time) (*UpsertResult, error) {
	rec := &doc.Emails[idx]
	var changed []string

	setIfNew := func(field string, target *string, value string) {
		v := strings.TrimSpace(value)
		if v != "" && v != *target {
			*target = v
			changed = append(changed, field)
		}
	}
	setIfNew("recipient_name", &rec.RecipientName, p.RecipientName)
	setIfNew("institution", &rec.Institution, p.Institution)
	setIfNew("subject", &rec.Subject, p.Subject)
	setIfNew("purpose", &rec.Purpose, p.Purpose)

	touched := appendMissingDate(&rec.FollowUpDates, rec.DateSent)
	if appendMissingDate(&rec.FollowUpDates, dateSent) {
		touched = true
	}
	if touched {
		changed = append(changed, "follow_up_dates")
	}

	if text := strings.TrimSpace(p.Notes); text != "" {
		rec.Notes = append(rec.Notes, Note{Date: stamp.Date(now), Text: text})
		changed = append(changed, "notes")
	}
	setIfNew("referred_by", &rec.ReferredBy, p.ReferredBy)
	if p.ConnectionStrength > 0 {
		if v := clampStrength(p.ConnectionStrength); v != rec.ConnectionStrength {
			rec.ConnectionStrength = v
			changed = append(changed, "connection_strength")
		}
	}

	if len(changed) == 0 {
		out := *rec
		return &UpsertResult{Record: &out}, nil
	}

	rec.LastUpdated = stamp.Instant(now)
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	out := *rec
	s.log.Info("cold email merged",
		zap.String("id", out.ID),
		zap.Strings("changed", changed))
	return &UpsertResult{Record: &out, Changed: changed}, nil
}

// UpdateParams selects a contact by ID, RecipientEmail, or RecipientName
// (substring) and carries the changes.
type UpdateParams struct {
	ID                 string
	RecipientEmail     string
	RecipientName      string
	Status             string
	ResponseDate       string
	FollowUpSent       bool
	Notes              string
	ReferredBy         string
	ConnectionStrength int
}

// Update mutates the resolved contact. A response date without an explicit
// status promotes the status to responded; a follow-up appends today to
// follow_up_dates and promotes to follow_up_sent.
func (s *Service) Update(p UpdateParams) (*ColdEmailRecord, error) {
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
	idx, err := resolveContact(doc.Emails, p.ID, p.RecipientEmail, p.RecipientName)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	rec := &doc.Emails[idx]
	if status != "" {
		rec.Status = status
	}
	if v := strings.TrimSpace(p.ResponseDate); v != "" {
		rec.ResponseDate = v
		if status == "" {
			rec.Status = StatusResponded
		}
	}
	if p.FollowUpSent {
		rec.FollowUpDates = append(rec.FollowUpDates, stamp.Date(now))
		if status == "" {
			rec.Status = StatusFollowUpSent
		}
	}
	if text := strings.TrimSpace(p.Notes); text != "" {
		rec.Notes = append(rec.Notes, Note{Date: stamp.Date(now), Text: text})
	}
	if v := strings.TrimSpace(p.ReferredBy); v != "" {
		rec.ReferredBy = v
	}
	if p.ConnectionStrength > 0 {
		rec.ConnectionStrength = clampStrength(p.ConnectionStrength)
	}
	rec.LastUpdated = stamp.Instant(now)

	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	out := *rec
	s.log.Info("cold email updated", zap.String("id", out.ID))
	return &out, nil
}

// QueryParams are conjunctive filters over the collection. AwaitingResponse
// restricts to threads still waiting on a reply.
type QueryParams struct {
	Status           string
	Institution      string
	RecipientName    string
	DaysBack         int
	AwaitingResponse bool
}

// Query filters without mutating, sorted by send date, newest first.
func (s *Service) Query(p QueryParams) ([]ColdEmailRecord, error) {
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

	out := make([]ColdEmailRecord, 0, len(doc.Emails))
	for _, rec := range doc.Emails {
		if status != "" && rec.Status != status {
			continue
		}
		if p.Institution != "" && !containsFold(rec.Institution, p.Institution) {
			continue
		}
		if p.RecipientName != "" && !containsFold(rec.RecipientName, p.RecipientName) {
			continue
		}
		if cutoff != "" && rec.DateSent < cutoff {
			continue
		}
		if p.AwaitingResponse {
			awaiting := (rec.Status == StatusSent || rec.Status == StatusFollowUpSent) && rec.ResponseDate == ""
			if !awaiting {
				continue
			}
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateSent > out[j].DateSent })
	return out, nil
}

// Graph loads the collection and renders the referral network. The count
// lets callers distinguish an empty network from a sparse one.
func (s *Service) Graph() (string, int, error) {
	doc, err := s.store.Load()
	if err != nil {
		return "", 0, err
	}
	return BuildGraph(doc.Emails), len(doc.Emails), nil
}

// resolveContact is the three-stage resolver: exact id, else email with the
// most recently updated record winning, else name substring, which must
// match exactly one contact.
func resolveContact(emails []ColdEmailRecord, id, email, name string) (int, error) {
	id = strings.TrimSpace(id)
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	switch {
	case id != "":
		for i := range emails {
			if emails[i].ID == id {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: id %q", ErrNotFound, id)
	case email != "":
		best := -1
		for i := range emails {
			if !strings.EqualFold(emails[i].RecipientEmail, email) {
				continue
			}
			if best == -1 || emails[i].LastUpdated > emails[best].LastUpdated {
				best = i
			}
		}
		if best == -1 {
			return -1, fmt.Errorf("%w: recipient email %q", ErrNotFound, email)
		}
		return best, nil
	case name != "":
		var matches []int
		for i := range emails {
			if containsFold(emails[i].RecipientName, name) {
				matches = append(matches, i)
			}
		}
		switch len(matches) {
		case 0:
			return -1, fmt.Errorf("%w: recipient name %q", ErrNotFound, name)
		case 1:
			return matches[0], nil
		default:
			candidates := make([]string, len(matches))
			for i, m := range matches {
				candidates[i] = fmt.Sprintf("%s <%s>", emails[m].RecipientName, emails[m].RecipientEmail)
			}
			return -1, &AmbiguousMatchError{Name: name, Candidates: candidates}
		}
	default:
		return -1, ErrNoSelector
	}
}

func (s *Service) mintID(emails []ColdEmailRecord) string {
	taken := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		taken[e.ID] = struct{}{}
	}
	id := s.newID()
	for {
		if _, dup := taken[id]; !dup {
			return id
		}
		id = s.newID()
	}
}

// appendMissingDate appends date unless it is empty or already recorded.
func appendMissingDate(dates *[]string, date string) bool {
	if date == "" {
		return false
	}
	for _, d := range *dates {
		if d == date {
			return false
		}
	}
	*dates = append(*dates, date)
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
