package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"careerpilot.local/internal/discovery"
	"careerpilot.local/internal/letters"
	"careerpilot.local/internal/outreach"
	"careerpilot.local/internal/scratchpad"
	"careerpilot.local/internal/serpapi"
	"careerpilot.local/internal/storage"
	"careerpilot.local/internal/tracker"
)

func fixedClock() time.Time {
	return time.Date(2026, time.August, 25, 10, 0, 0, 0, time.UTC)
}

type fakeDocs struct {
	files map[string]string
	err   error
}

func (f *fakeDocs) Read(name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.files[name]
	if !ok {
		return "", errors.New("document not found: " + name)
	}
	return text, nil
}

func (f *fakeDocs) List() ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var names []string
	for name := range f.files {
		names = append(names, name)
	}
	return names, nil
}

type fakeGen struct {
	reply string
	err   error
}

func (f *fakeGen) Generate(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakePortfolio struct {
	md  string
	err error
}

func (f *fakePortfolio) Build() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.md, nil
}

type fixtures struct {
	docs   *fakeDocs
	search *fakeSearch
	gen    *fakeGen
	jobs   *storage.MemStore[discovery.JobCollection]
}

type fakeSearch struct {
	jobs   []serpapi.Job
	papers []serpapi.Paper
	err    error
}

func (f *fakeSearch) SearchJobs(_ context.Context, _, _, _ string, limit int) ([]serpapi.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.jobs) {
		return f.jobs[:limit], nil
	}
	return f.jobs, nil
}

func (f *fakeSearch) SearchScholar(_ context.Context, _ string, _, _, limit int) ([]serpapi.Paper, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.papers) {
		return f.papers[:limit], nil
	}
	return f.papers, nil
}

func newTestToolset(t *testing.T) (*Toolset, *fixtures) {
	t.Helper()

	fx := &fixtures{
		docs:   &fakeDocs{files: map[string]string{"cv.txt": "Jane Doe. Research engineer."}},
		search: &fakeSearch{},
		gen:    &fakeGen{reply: "Dear hiring team,"},
		jobs:   storage.NewMemStore(discovery.EmptyJobCollection),
	}

	trk, err := tracker.New(tracker.Config{Store: storage.NewMemStore(tracker.EmptyCollection), Clock: fixedClock})
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}

	out, err := outreach.New(outreach.Config{Store: storage.NewMemStore(outreach.EmptyCollection), Clock: fixedClock})
	if err != nil {
		t.Fatalf("outreach.New: %v", err)
	}

	disc, err := discovery.New(discovery.Config{
		Jobs:   fx.jobs,
		Ledger: storage.NewMemStore(discovery.EmptyLedger),
		Client: fx.search,
		Clock:  fixedClock,
	})
	if err != nil {
		t.Fatalf("discovery.New: %v", err)
	}

	let, err := letters.New(letters.Config{
		Generator: fx.gen,
		Docs:      fx.docs,
		Tracker:   trk,
		Dir:       t.TempDir(),
		Candidate: "Jane Doe",
		Clock:     fixedClock,
	})
	if err != nil {
		t.Fatalf("letters.New: %v", err)
	}

	ts := &Toolset{
		Docs:      fx.docs,
		Pad:       scratchpad.New(filepath.Join(t.TempDir(), "pad.txt"), fixedClock),
		Tracker:   trk,
		Outreach:  out,
		Discovery: disc,
		Letters:   let,
		Portfolio: &fakePortfolio{md: "# Career Portfolio"},
	}
	return ts, fx
}

func TestReadDocumentFoldsErrors(t *testing.T) {
	ts, _ := newTestToolset(t)

	got := ts.readDocument(readDocumentArgs{FileName: "cv.txt"})
	if got != "Jane Doe. Research engineer." {
		t.Fatalf("readDocument = %q", got)
	}

	got = ts.readDocument(readDocumentArgs{FileName: "missing.txt"})
	if !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("missing document should fold to an Error string, got %q", got)
	}
}

func TestListDocuments(t *testing.T) {
	ts, fx := newTestToolset(t)

	got := ts.listDocuments()
	if !strings.Contains(got, "cv.txt") {
		t.Fatalf("listDocuments = %q", got)
	}

	fx.docs.files = map[string]string{}
	if got := ts.listDocuments(); got != "No readable documents found." {
		t.Fatalf("empty folder: got %q", got)
	}
}

func TestScratchpadRoundTrip(t *testing.T) {
	ts, _ := newTestToolset(t)

	if got := ts.writeScratchpad(writeScratchpadArgs{Text: "ask Chen about the lab opening"}); !strings.Contains(got, "scratchpad") {
		t.Fatalf("writeScratchpad = %q", got)
	}
	got := ts.readScratchpad()
	if !strings.Contains(got, "[2026-08-25 10:00] ask Chen about the lab opening") {
		t.Fatalf("readScratchpad = %q", got)
	}

	if got := ts.writeScratchpad(writeScratchpadArgs{Text: "   "}); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("blank note should fold to an Error string, got %q", got)
	}
}

func TestApplicationToolsRoundTrip(t *testing.T) {
	ts, _ := newTestToolset(t)

	got := ts.addApplication(addApplicationArgs{Company: "Acme Corp", Position: "Research Engineer"})
	if !strings.Contains(got, "Acme Corp") || !strings.Contains(got, "applied") {
		t.Fatalf("addApplication = %q", got)
	}

	got = ts.updateApplication(updateApplicationArgs{Company: "acme corp", Status: "offer"})
	if !strings.Contains(got, "offer") {
		t.Fatalf("updateApplication = %q", got)
	}

	got = ts.queryApplications(queryApplicationsArgs{Company: "acme"})
	if !strings.Contains(got, "Found 1 application(s)") {
		t.Fatalf("queryApplications = %q", got)
	}

	got = ts.addApplication(addApplicationArgs{Company: "Acme Corp", Position: "Chief", Status: "hired"})
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "invalid status") {
		t.Fatalf("bad status should fold to an Error string, got %q", got)
	}

	got = ts.deleteApplication(deleteApplicationArgs{Company: "Acme Corp"})
	if !strings.Contains(got, "Deleted") {
		t.Fatalf("deleteApplication = %q", got)
	}
}

func TestColdEmailToolsRoundTrip(t *testing.T) {
	ts, _ := newTestToolset(t)

	got := ts.logColdEmail(logColdEmailArgs{
		RecipientName:  "Dr. Sarah Chen",
		RecipientEmail: "schen@mit.edu",
		Institution:    "MIT",
	})
	if !strings.Contains(got, "Dr. Sarah Chen") {
		t.Fatalf("logColdEmail = %q", got)
	}

	got = ts.updateColdEmail(updateColdEmailArgs{RecipientName: "Chen", ResponseDate: "2026-08-26"})
	if !strings.Contains(got, "responded") {
		t.Fatalf("updateColdEmail = %q", got)
	}

	got = ts.queryColdEmails(queryColdEmailsArgs{Institution: "mit"})
	if !strings.Contains(got, "Found 1 cold email(s)") {
		t.Fatalf("queryColdEmails = %q", got)
	}
}

func TestNetworkGraphWrapsMermaidFence(t *testing.T) {
	ts, _ := newTestToolset(t)

	if got := ts.networkGraph(); !strings.Contains(got, "empty") {
		t.Fatalf("empty tracker: got %q", got)
	}

	ts.logColdEmail(logColdEmailArgs{
		RecipientName:  "Dr. Sarah Chen",
		RecipientEmail: "schen@mit.edu",
		Institution:    "MIT",
	})
	got := ts.networkGraph()
	if !strings.Contains(got, "```mermaid\ngraph TD") {
		t.Fatalf("graph should sit inside a mermaid fence, got %q", got)
	}
	if !strings.HasSuffix(got, "```") {
		t.Fatalf("fence not closed: %q", got)
	}
	if !strings.Contains(got, "(1 contact(s))") {
		t.Fatalf("missing contact count: %q", got)
	}
}

func TestSearchJobsPersistsByDefault(t *testing.T) {
	ts, fx := newTestToolset(t)
	fx.search.jobs = []serpapi.Job{
		{Title: "Research Assistant", Company: "MIT Media Lab", Location: "Cambridge, MA"},
	}

	got := ts.searchJobs(context.Background(), searchJobsArgs{Query: "research assistant", Location: "Boston, MA"})
	if !strings.Contains(got, "Found 1 job(s), 1 new saved.") {
		t.Fatalf("searchJobs = %q", got)
	}

	doc, err := fx.jobs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Jobs) != 1 {
		t.Fatalf("tool search should persist, stored %d", len(doc.Jobs))
	}
}

func TestSearchScholarSurfacesUpstreamFailure(t *testing.T) {
	ts, fx := newTestToolset(t)
	fx.search.err = errors.New("serpapi HTTP 500")

	got := ts.searchScholar(context.Background(), searchScholarArgs{Query: "transformers"})
	if !strings.Contains(got, "serpapi HTTP 500") {
		t.Fatalf("searchScholar = %q", got)
	}
}

func TestApplyToOpportunityLogsApplication(t *testing.T) {
	ts, fx := newTestToolset(t)
	fx.search.jobs = []serpapi.Job{
		{Title: "Lab Technician", Company: "Broad Institute", Location: "Cambridge, MA", Description: "Wet lab work."},
	}
	ts.searchJobs(context.Background(), searchJobsArgs{Query: "lab technician", Location: "Boston"})

	doc, err := fx.jobs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	id := doc.Jobs[0].ID

	got := ts.applyToOpportunity(opportunityIDArgs{ID: id})
	if !strings.Contains(got, "Broad Institute") || !strings.Contains(got, "applied") {
		t.Fatalf("applyToOpportunity = %q", got)
	}

	apps, err := ts.Tracker.Query(tracker.QueryParams{Company: "Broad"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("apply should log a tracker application, got %d", len(apps))
	}
	if apps[0].Position != "Lab Technician" {
		t.Fatalf("Position = %q", apps[0].Position)
	}
	if apps[0].Notes[0].Text != "Found via job search: lab technician Boston" {
		t.Fatalf("Notes = %q", apps[0].Notes[0].Text)
	}

	if got := ts.applyToOpportunity(opportunityIDArgs{ID: "nope"}); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("unknown id should fold to an Error string, got %q", got)
	}
}

func TestUsageReportRendersCounts(t *testing.T) {
	ts, fx := newTestToolset(t)
	fx.search.jobs = []serpapi.Job{{Title: "RA", Company: "MIT", Location: "Cambridge"}}
	ts.searchJobs(context.Background(), searchJobsArgs{Query: "ra"})

	got := ts.usageReport()
	if !strings.Contains(got, "1/100") {
		t.Fatalf("usageReport = %q", got)
	}
}

func TestCoverLetterReportsPathAndMark(t *testing.T) {
	ts, _ := newTestToolset(t)
	ts.addApplication(addApplicationArgs{Company: "Acme Corp", Position: "Research Engineer"})

	got := ts.coverLetter(context.Background(), coverLetterArgs{
		Company:  "Acme Corp",
		Position: "Research Engineer",
		CVFile:   "cv.txt",
	})
	if !strings.Contains(got, "Dear hiring team,") {
		t.Fatalf("coverLetter should include the letter text, got %q", got)
	}
	if !strings.Contains(got, "💾 Saved to: ") {
		t.Fatalf("coverLetter should report the saved path, got %q", got)
	}
	if !strings.Contains(got, "Marked cover_letter_generated") {
		t.Fatalf("coverLetter should report the tracker mark, got %q", got)
	}

	if got := ts.coverLetter(context.Background(), coverLetterArgs{Company: "Acme Corp"}); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("missing position should fold to an Error string, got %q", got)
	}
}

func TestPitchAndBriefPassThrough(t *testing.T) {
	ts, fx := newTestToolset(t)
	fx.gen.reply = "I build reliable data pipelines."

	if got := ts.elevatorPitch(context.Background(), pitchArgs{Company: "Acme"}); got != "I build reliable data pipelines." {
		t.Fatalf("elevatorPitch = %q", got)
	}
	if got := ts.companyBrief(context.Background(), briefArgs{Company: "Acme"}); got != "I build reliable data pipelines." {
		t.Fatalf("companyBrief = %q", got)
	}
	if got := ts.elevatorPitch(context.Background(), pitchArgs{}); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("missing company should fold to an Error string, got %q", got)
	}
}

func TestBuildPortfolioPassThrough(t *testing.T) {
	ts, _ := newTestToolset(t)
	if got := ts.buildPortfolio(); got != "# Career Portfolio" {
		t.Fatalf("buildPortfolio = %q", got)
	}
}

func TestToolsetBuildsFullToolList(t *testing.T) {
	ts, _ := newTestToolset(t)
	tools, err := ts.Tools()
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}
	if len(tools) != 22 {
		t.Fatalf("tool count = %d, want 22", len(tools))
	}
}
