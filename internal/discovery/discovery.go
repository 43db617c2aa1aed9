package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"careerpilot.local/internal/serpapi"
	"careerpilot.local/internal/stamp"
	"careerpilot.local/internal/storage"
)

// SearchClient is the slice of the search API this package consumes.
// *serpapi.Client satisfies it; tests substitute a fake.
type SearchClient interface {
	SearchJobs(ctx context.Context, query, location, datePosted string, limit int) ([]serpapi.Job, error)
	SearchScholar(ctx context.Context, query string, yearFrom, yearTo, limit int) ([]serpapi.Paper, error)
}

// Config assembles a Service. Jobs, Ledger, and Client are required;
// UsageLimit is the gate applied when a call does not carry its own.
type Config struct {
	Jobs       storage.Store[JobCollection]
	Ledger     storage.Store[UsageLedger]
	Client     SearchClient
	UsageLimit int
	Clock      func() time.Time
	NewID      func() string
	Logger     *zap.Logger
}

// Service owns opportunity discovery and quota accounting.
type Service struct {
	jobs       storage.Store[JobCollection]
	ledger     storage.Store[UsageLedger]
	client     SearchClient
	usageLimit int
	clock      func() time.Time
	newID      func() string
	log        *zap.Logger
}

func New(cfg Config) (*Service, error) {
	if cfg.Jobs == nil || cfg.Ledger == nil {
		return nil, errors.New("discovery: config requires both stores")
	}
	if cfg.Client == nil {
		return nil, errors.New("discovery: config requires a search client")
	}
	svc := &Service{
		jobs:       cfg.Jobs,
		ledger:     cfg.Ledger,
		client:     cfg.Client,
		usageLimit: cfg.UsageLimit,
		clock:      cfg.Clock,
		newID:      cfg.NewID,
		log:        cfg.Logger,
	}
	if svc.usageLimit <= 0 {
		svc.usageLimit = DefaultMonthlyLimit
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

// SearchParams drive one job search. MaxResults is capped at the upstream
// ceiling of 10; UsageLimit zero falls back to the service default.
type SearchParams struct {
	Query      string
	Location   string
	DatePosted string
	MaxResults int
	UsageLimit int
	Persist    bool
}

// SearchResult is the structured outcome of SearchAndSave. Exactly one of
// Error or Jobs carries meaning; Warning rides along either way.
type SearchResult struct {
	Jobs    []serpapi.Job `json:"jobs"`
	NewJobs int           `json:"new_jobs_count"`
	Usage   Usage         `json:"usage_stats"`
	Warning string        `json:"warning,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// SearchAndSave runs one metered job search. The quota gate short-circuits
// before any network traffic; an upstream failure comes back inside the
// result with the ledger untouched. Quota is consumed exactly once per
// successful call, however many postings dedup away afterwards.
func (s *Service) SearchAndSave(ctx context.Context, p SearchParams) (*SearchResult, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	location := strings.TrimSpace(p.Location)
	limit := p.MaxResults
	if limit <= 0 || limit > maxResultsPerCall {
		limit = maxResultsPerCall
	}
	gate := p.UsageLimit
	if gate <= 0 {
		gate = s.usageLimit
	}

	ledger, err := s.ledger.Load()
	if err != nil {
		return nil, err
	}
	now := s.clock()
	used := usedThisMonth(ledger, now)

	if used >= gate {
		s.log.Warn("search quota exhausted",
			zap.Int("used", used),
			zap.Int("limit", gate))
		return &SearchResult{
			Jobs:    []serpapi.Job{},
			Usage:   snapshot(ledger, used),
			Warning: fmt.Sprintf("usage limit reached: %d/%d searches used this month", used, gate),
		}, nil
	}

	jobs, err := s.client.SearchJobs(ctx, query, location, strings.TrimSpace(p.DatePosted), limit)
	if err != nil {
		s.log.Warn("job search failed", zap.String("query", query), zap.Error(err))
		return &SearchResult{
			Jobs:  []serpapi.Job{},
			Usage: snapshot(ledger, used),
			Error: err.Error(),
		}, nil
	}

	queryText := strings.TrimSpace(query + " " + location)
	ledger.Searches = append(ledger.Searches, LedgerEntry{
		Date:         stamp.Instant(now),
		Query:        queryText,
		ResultsCount: len(jobs),
	})
	if err := s.ledger.Save(ledger); err != nil {
		return nil, err
	}
	used++

	newCount := 0
	if p.Persist && len(jobs) > 0 {
		newCount, err = s.persistNew(jobs, queryText, now)
		if err != nil {
			return nil, err
		}
	}

	result := &SearchResult{Jobs: jobs, NewJobs: newCount, Usage: snapshot(ledger, used)}
	if float64(used) >= 0.8*float64(gate) {
		result.Warning = fmt.Sprintf("approaching monthly limit: %d/%d searches used", used, gate)
		s.log.Warn("search quota warning", zap.Int("used", used), zap.Int("limit", gate))
	}
	s.log.Info("job search completed",
		zap.String("query", queryText),
		zap.Int("results", len(jobs)),
		zap.Int("new", newCount))
	return result, nil
}

// persistNew appends postings whose identity triple is not already stored,
// writing the collection once for the whole batch.
func (s *Service) persistNew(jobs []serpapi.Job, queryText string, now time.Time) (int, error) {
	doc, err := s.jobs.Load()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(doc.Jobs))
	for _, j := range doc.Jobs {
		seen[dedupKey(j.Company, j.Title, j.Location)] = struct{}{}
	}

	added := 0
	for _, j := range jobs {
		key := dedupKey(j.Company, j.Title, j.Location)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		doc.Jobs = append(doc.Jobs, JobOpportunity{
			ID:             s.mintID(doc.Jobs),
			Title:          j.Title,
			Company:        j.Company,
			Location:       j.Location,
			Link:           j.Link,
			Description:    j.Description,
			Via:            j.Via,
			DatePosted:     j.PostedAt,
			Salary:         j.Salary,
			DateDiscovered: stamp.Instant(now),
			SearchQuery:    queryText,
			Applied:        false,
		})
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.jobs.Save(doc); err != nil {
		return 0, err
	}
	return added, nil
}

// ScholarParams drive one publication search.
type ScholarParams struct {
	Query      string
	YearFrom   int
	YearTo     int
	MaxResults int
	UsageLimit int
}

// ScholarResult mirrors SearchResult for the scholar engine; papers are
// never persisted.
type ScholarResult struct {
	Papers  []serpapi.Paper `json:"papers"`
	Usage   Usage           `json:"usage_stats"`
	Warning string          `json:"warning,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SearchScholar shares the quota gate and the ledger with job searches.
func (s *Service) SearchScholar(ctx context.Context, p ScholarParams) (*ScholarResult, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	limit := p.MaxResults
	if limit <= 0 || limit > maxResultsPerCall {
		limit = maxResultsPerCall
	}
	gate := p.UsageLimit
	if gate <= 0 {
		gate = s.usageLimit
	}

	ledger, err := s.ledger.Load()
	if err != nil {
		return nil, err
	}
	now := s.clock()
	used := usedThisMonth(ledger, now)

	if used >= gate {
		s.log.Warn("search quota exhausted",
			zap.Int("used", used),
			zap.Int("limit", gate))
		return &ScholarResult{
			Papers:  []serpapi.Paper{},
			Usage:   snapshot(ledger, used),
			Warning: fmt.Sprintf("usage limit reached: %d/%d searches used this month", used, gate),
		}, nil
	}

	papers, err := s.client.SearchScholar(ctx, query, p.YearFrom, p.YearTo, limit)
	if err != nil {
		s.log.Warn("scholar search failed", zap.String("query", query), zap.Error(err))
		return &ScholarResult{
			Papers: []serpapi.Paper{},
			Usage:  snapshot(ledger, used),
			Error:  err.Error(),
		}, nil
	}

	ledger.Searches = append(ledger.Searches, LedgerEntry{
		Date:         stamp.Instant(now),
		Query:        query,
		ResultsCount: len(papers),
	})
	if err := s.ledger.Save(ledger); err != nil {
		return nil, err
	}
	used++

	result := &ScholarResult{Papers: papers, Usage: snapshot(ledger, used)}
	if float64(used) >= 0.8*float64(gate) {
		result.Warning = fmt.Sprintf("approaching monthly limit: %d/%d searches used", used, gate)
	}
	return result, nil
}

// QueryParams are conjunctive filters over stored opportunities.
type QueryParams struct {
	Company  string
	Title    string
	DaysBack int
	SortBy   string
}

// QueryOpportunities filters without mutating. Sorted descending by
// date_discovered unless SortBy picks company or title; unknown keys fall
// back to the default.
func (s *Service) QueryOpportunities(p QueryParams) ([]JobOpportunity, error) {
	doc, err := s.jobs.Load()
	if err != nil {
		return nil, err
	}

	cutoff := ""
	if p.DaysBack > 0 {
		cutoff = stamp.CutoffDate(s.clock(), p.DaysBack)
	}

	out := make([]JobOpportunity, 0, len(doc.Jobs))
	for _, rec := range doc.Jobs {
		if p.Company != "" && !containsFold(rec.Company, p.Company) {
			continue
		}
		if p.Title != "" && !containsFold(rec.Title, p.Title) {
			continue
		}
		if cutoff != "" && rec.DateDiscovered < cutoff {
			continue
		}
		out = append(out, rec)
	}

	key := func(i int) string { return out[i].DateDiscovered }
	switch strings.ToLower(strings.TrimSpace(p.SortBy)) {
	case "company":
		key = func(i int) string { return out[i].Company }
	case "title":
		key = func(i int) string { return out[i].Title }
	}
	sort.SliceStable(out, func(i, j int) bool { return key(i) > key(j) })
	return out, nil
}

// DeleteOpportunity removes the record with the given id.
func (s *Service) DeleteOpportunity(id string) (*JobOpportunity, error) {
	doc, err := s.jobs.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Jobs {
		if doc.Jobs[i].ID != id {
			continue
		}
		removed := doc.Jobs[i]
		doc.Jobs = append(doc.Jobs[:i], doc.Jobs[i+1:]...)
		if err := s.jobs.Save(doc); err != nil {
			return nil, err
		}
		s.log.Info("opportunity deleted", zap.String("id", removed.ID))
		return &removed, nil
	}
	return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// MarkApplied flags the opportunity; logging the matching application is
// the tracker's half of the flow.
func (s *Service) MarkApplied(id string) (*JobOpportunity, error) {
	doc, err := s.jobs.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Jobs {
		if doc.Jobs[i].ID != id {
			continue
		}
		if doc.Jobs[i].Applied {
			out := doc.Jobs[i]
			return &out, nil
		}
		doc.Jobs[i].Applied = true
		if err := s.jobs.Save(doc); err != nil {
			return nil, err
		}
		out := doc.Jobs[i]
		s.log.Info("opportunity marked applied", zap.String("id", out.ID))
		return &out, nil
	}
	return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// Report is the read-only quota view: counts plus the most recent
// current-month entries, newest first.
type Report struct {
	Used      int
	Limit     int
	Remaining int
	Percent   float64
	Recent    []LedgerEntry
}

const reportRecentEntries = 5

// UsageReport computes the current month's usage without mutating anything.
func (s *Service) UsageReport() (*Report, error) {
	ledger, err := s.ledger.Load()
	if err != nil {
		return nil, err
	}
	now := s.clock()
	prefix := stamp.Month(now)

	var month []LedgerEntry
	for _, e := range ledger.Searches {
		if strings.HasPrefix(e.Date, prefix) {
			month = append(month, e)
		}
	}
	used := len(month)
	u := snapshot(ledger, used)

	if len(month) > reportRecentEntries {
		month = month[len(month)-reportRecentEntries:]
	}
	// newest first
	for i, j := 0, len(month)-1; i < j; i, j = i+1, j-1 {
		month[i], month[j] = month[j], month[i]
	}

	return &Report{
		Used:      u.Used,
		Limit:     u.Limit,
		Remaining: u.Remaining,
		Percent:   float64(u.Used) / float64(u.Limit) * 100,
		Recent:    month,
	}, nil
}

func usedThisMonth(ledger UsageLedger, now time.Time) int {
	prefix := stamp.Month(now)
	used := 0
	for _, e := range ledger.Searches {
		if strings.HasPrefix(e.Date, prefix) {
			used++
		}
	}
	return used
}

// snapshot normalizes a hand-edited or zero limit before deriving stats.
func snapshot(ledger UsageLedger, used int) Usage {
	limit := ledger.MonthlyLimit
	if limit <= 0 {
		limit = DefaultMonthlyLimit
	}
	return Usage{Used: used, Limit: limit, Remaining: limit - used}
}

func (s *Service) mintID(jobs []JobOpportunity) string {
	taken := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		taken[j.ID] = struct{}{}
	}
	id := s.newID()
	for {
		if _, dup := taken[id]; !dup {
			return id
		}
		id = s.newID()
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
