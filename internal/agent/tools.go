package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"careerpilot.local/internal/discovery"
	"careerpilot.local/internal/letters"
	"careerpilot.local/internal/outreach"
	"careerpilot.local/internal/tracker"
)

// DocumentSource lists and reads the files the candidate dropped into the
// documents folder.
type DocumentSource interface {
	Read(name string) (string, error)
	List() ([]string, error)
}

// Notepad is the agent's free-text memory between sessions.
type Notepad interface {
	Append(text string) error
	Read() (string, error)
}

// PortfolioBuilder renders the markdown career portfolio.
type PortfolioBuilder interface {
	Build() (string, error)
}

// Toolset bundles the services the agent's tools call into. Every handler
// returns a plain string for the model to read; failures are folded into
// "Error: ..." text instead of tool errors so the model can see what went
// wrong and try again.
type Toolset struct {
	Docs      DocumentSource
	Pad       Notepad
	Tracker   *tracker.Service
	Outreach  *outreach.Service
	Discovery *discovery.Service
	Letters   *letters.Service
	Portfolio PortfolioBuilder
}

func errString(err error) string {
	return "Error: " + err.Error()
}

type noArgs struct{}

type readDocumentArgs struct {
	FileName string `json:"file_name"`
}

func (t *Toolset) readDocument(args readDocumentArgs) string {
	text, err := t.Docs.Read(args.FileName)
	if err != nil {
		return errString(err)
	}
	return text
}

func (t *Toolset) listDocuments() string {
	names, err := t.Docs.List()
	if err != nil {
		return errString(err)
	}
	if len(names) == 0 {
		return "No readable documents found."
	}
	return "Available documents:\n- " + strings.Join(names, "\n- ")
}

type writeScratchpadArgs struct {
	Text string `json:"text"`
}

func (t *Toolset) writeScratchpad(args writeScratchpadArgs) string {
	if err := t.Pad.Append(args.Text); err != nil {
		return errString(err)
	}
	return "✅ Added to scratchpad."
}

func (t *Toolset) readScratchpad() string {
	text, err := t.Pad.Read()
	if err != nil {
		return errString(err)
	}
	return text
}

type addApplicationArgs struct {
	Company        string `json:"company"`
	Position       string `json:"position"`
	Status         string `json:"status,omitempty"`
	DateApplied    string `json:"date_applied,omitempty"`
	Deadline       string `json:"application_deadline,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	NextAction     string `json:"next_action,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Contacts       string `json:"contacts,omitempty"`
}

func (t *Toolset) addApplication(args addApplicationArgs) string {
	rec, err := t.Tracker.Add(tracker.AddParams{
		Company:        args.Company,
		Position:       args.Position,
		Status:         args.Status,
		DateApplied:    args.DateApplied,
		Deadline:       args.Deadline,
		JobDescription: args.JobDescription,
		NextAction:     args.NextAction,
		Notes:          args.Notes,
		Contacts:       args.Contacts,
	})
	if err != nil {
		return errString(err)
	}
	return tracker.FormatAdded(rec)
}

type updateApplicationArgs struct {
	ID                   string  `json:"id,omitempty"`
	Company              string  `json:"company,omitempty"`
	Status               string  `json:"status,omitempty"`
	NextAction           *string `json:"next_action,omitempty"`
	Notes                string  `json:"notes,omitempty"`
	CoverLetterGenerated *bool   `json:"cover_letter_generated,omitempty"`
}

func (t *Toolset) updateApplication(args updateApplicationArgs) string {
	rec, err := t.Tracker.Update(tracker.UpdateParams{
		ID:                   args.ID,
		Company:              args.Company,
		Status:               args.Status,
		NextAction:           args.NextAction,
		Notes:                args.Notes,
		CoverLetterGenerated: args.CoverLetterGenerated,
	})
	if err != nil {
		return errString(err)
	}
	return tracker.FormatUpdated(rec)
}

type queryApplicationsArgs struct {
	Status   string `json:"status,omitempty"`
	Company  string `json:"company,omitempty"`
	DaysBack int    `json:"days_back,omitempty"`
	SortBy   string `json:"sort_by,omitempty"`
}

func (t *Toolset) queryApplications(args queryApplicationsArgs) string {
	p := tracker.QueryParams{
		Status:   args.Status,
		Company:  args.Company,
		DaysBack: args.DaysBack,
		SortBy:   args.SortBy,
	}
	apps, err := t.Tracker.Query(p)
	if err != nil {
		return errString(err)
	}
	return tracker.FormatApplications(apps, p)
}

type deleteApplicationArgs struct {
	ID      string `json:"id,omitempty"`
	Company string `json:"company,omitempty"`
}

func (t *Toolset) deleteApplication(args deleteApplicationArgs) string {
	rec, err := t.Tracker.Delete(args.ID, args.Company)
	if err != nil {
		return errString(err)
	}
	return tracker.FormatDeleted(rec)
}

type logColdEmailArgs struct {
	RecipientName      string `json:"recipient_name"`
	RecipientEmail     string `json:"recipient_email"`
	Institution        string `json:"institution,omitempty"`
	Subject            string `json:"subject,omitempty"`
	Purpose            string `json:"purpose,omitempty"`
	DateSent           string `json:"date_sent,omitempty"`
	Notes              string `json:"notes,omitempty"`
	ReferredBy         string `json:"referred_by,omitempty"`
	ConnectionStrength int    `json:"connection_strength,omitempty"`
}

func (t *Toolset) logColdEmail(args logColdEmailArgs) string {
	res, err := t.Outreach.Add(outreach.AddParams{
		RecipientName:      args.RecipientName,
		RecipientEmail:     args.RecipientEmail,
		Institution:        args.Institution,
		Subject:            args.Subject,
		Purpose:            args.Purpose,
		DateSent:           args.DateSent,
		Notes:              args.Notes,
		ReferredBy:         args.ReferredBy,
		ConnectionStrength: args.ConnectionStrength,
	})
	if err != nil {
		return errString(err)
	}
	return outreach.FormatUpsert(res)
}

type updateColdEmailArgs struct {
	ID                 string `json:"id,omitempty"`
	RecipientEmail     string `json:"recipient_email,omitempty"`
	RecipientName      string `json:"recipient_name,omitempty"`
	Status             string `json:"status,omitempty"`
	ResponseDate       string `json:"response_date,omitempty"`
	FollowUpSent       bool   `json:"follow_up_sent,omitempty"`
	Notes              string `json:"notes,omitempty"`
	ReferredBy         string `json:"referred_by,omitempty"`
	ConnectionStrength int    `json:"connection_strength,omitempty"`
}

func (t *Toolset) updateColdEmail(args updateColdEmailArgs) string {
	rec, err := t.Outreach.Update(outreach.UpdateParams{
		ID:                 args.ID,
		RecipientEmail:     args.RecipientEmail,
		RecipientName:      args.RecipientName,
		Status:             args.Status,
		ResponseDate:       args.ResponseDate,
		FollowUpSent:       args.FollowUpSent,
		Notes:              args.Notes,
		ReferredBy:         args.ReferredBy,
		ConnectionStrength: args.ConnectionStrength,
	})
	if err != nil {
		return errString(err)
	}
	return outreach.FormatUpdated(rec)
}

type queryColdEmailsArgs struct {
	Status           string `json:"status,omitempty"`
	Institution      string `json:"institution,omitempty"`
	RecipientName    string `json:"recipient_name,omitempty"`
	DaysBack         int    `json:"days_back,omitempty"`
	AwaitingResponse bool   `json:"awaiting_response,omitempty"`
}

func (t *Toolset) queryColdEmails(args queryColdEmailsArgs) string {
	p := outreach.QueryParams{
		Status:           args.Status,
		Institution:      args.Institution,
		RecipientName:    args.RecipientName,
		DaysBack:         args.DaysBack,
		AwaitingResponse: args.AwaitingResponse,
	}
	recs, err := t.Outreach.Query(p)
	if err != nil {
		return errString(err)
	}
	return outreach.FormatColdEmails(recs, p)
}

func (t *Toolset) networkGraph() string {
	graph, contacts, err := t.Outreach.Graph()
	if err != nil {
		return errString(err)
	}
	if contacts == 0 {
		return "No cold emails recorded yet, so the network graph is empty."
	}
	return fmt.Sprintf("Referral network (%d contact(s)):\n\n```mermaid\n%s\n```", contacts, graph)
}

type searchJobsArgs struct {
	Query      string `json:"query"`
	Location   string `json:"location,omitempty"`
	DatePosted string `json:"date_posted,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	UsageLimit int    `json:"usage_limit,omitempty"`
}

func (t *Toolset) searchJobs(ctx context.Context, args searchJobsArgs) string {
	res, err := t.Discovery.SearchAndSave(ctx, discovery.SearchParams{
		Query:      args.Query,
		Location:   args.Location,
		DatePosted: args.DatePosted,
		MaxResults: args.MaxResults,
		UsageLimit: args.UsageLimit,
		Persist:    true,
	})
	if err != nil {
		return errString(err)
	}
	return discovery.FormatSearchResult(res)
}

type searchScholarArgs struct {
	Query      string `json:"query"`
	YearFrom   int    `json:"year_from,omitempty"`
	YearTo     int    `json:"year_to,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	UsageLimit int    `json:"usage_limit,omitempty"`
}

func (t *Toolset) searchScholar(ctx context.Context, args searchScholarArgs) string {
	res, err := t.Discovery.SearchScholar(ctx, discovery.ScholarParams{
		Query:      args.Query,
		YearFrom:   args.YearFrom,
		YearTo:     args.YearTo,
		MaxResults: args.MaxResults,
		UsageLimit: args.UsageLimit,
	})
	if err != nil {
		return errString(err)
	}
	return discovery.FormatScholarResult(res)
}

type queryOpportunitiesArgs struct {
	Company  string `json:"company,omitempty"`
	Title    string `json:"title,omitempty"`
	DaysBack int    `json:"days_back,omitempty"`
	SortBy   string `json:"sort_by,omitempty"`
}

func (t *Toolset) queryOpportunities(args queryOpportunitiesArgs) string {
	p := discovery.QueryParams{
		Company:  args.Company,
		Title:    args.Title,
		DaysBack: args.DaysBack,
		SortBy:   args.SortBy,
	}
	recs, err := t.Discovery.QueryOpportunities(p)
	if err != nil {
		return errString(err)
	}
	return discovery.FormatOpportunities(recs, p)
}

type opportunityIDArgs struct {
	ID string `json:"id"`
}

func (t *Toolset) deleteOpportunity(args opportunityIDArgs) string {
	rec, err := t.Discovery.DeleteOpportunity(args.ID)
	if err != nil {
		return errString(err)
	}
	return discovery.FormatDeleted(rec)
}

// applyToOpportunity flips the saved posting to applied and logs a matching
// application in the tracker so both collections agree.
func (t *Toolset) applyToOpportunity(args opportunityIDArgs) string {
	job, err := t.Discovery.MarkApplied(args.ID)
	if err != nil {
		return errString(err)
	}
	rec, err := t.Tracker.Add(tracker.AddParams{
		Company:        job.Company,
		Position:       job.Title,
		JobDescription: job.Description,
		Notes:          "Found via job search: " + job.SearchQuery,
	})
	if err != nil {
		return discovery.FormatMarkedApplied(job) + "\n" + errString(err)
	}
	return discovery.FormatMarkedApplied(job) + "\n" + tracker.FormatAdded(rec)
}

func (t *Toolset) usageReport() string {
	rep, err := t.Discovery.UsageReport()
	if err != nil {
		return errString(err)
	}
	return discovery.FormatReport(rep)
}

type coverLetterArgs struct {
	Company        string `json:"company"`
	Position       string `json:"position"`
	JobDescription string `json:"job_description,omitempty"`
	CVFile         string `json:"cv_file,omitempty"`
	Highlights     string `json:"highlights,omitempty"`
	Format         string `json:"format,omitempty"`
}

func (t *Toolset) coverLetter(ctx context.Context, args coverLetterArgs) string {
	res, err := t.Letters.GenerateCoverLetter(ctx, letters.CoverLetterParams{
		Company:        args.Company,
		Position:       args.Position,
		JobDescription: args.JobDescription,
		CVFile:         args.CVFile,
		Highlights:     args.Highlights,
		Format:         args.Format,
	})
	if err != nil {
		return errString(err)
	}
	out := res.Text + "\n\n💾 Saved to: " + res.Path
	if res.Marked {
		out += "\n✅ Marked cover_letter_generated on the matching application."
	}
	return out
}

type pitchArgs struct {
	Company        string `json:"company"`
	JobDescription string `json:"job_description,omitempty"`
}

func (t *Toolset) elevatorPitch(ctx context.Context, args pitchArgs) string {
	text, err := t.Letters.ElevatorPitch(ctx, args.Company, args.JobDescription)
	if err != nil {
		return errString(err)
	}
	return text
}

type briefArgs struct {
	Company string `json:"company"`
	Role    string `json:"role,omitempty"`
}

func (t *Toolset) companyBrief(ctx context.Context, args briefArgs) string {
	text, err := t.Letters.CompanyBrief(ctx, args.Company, args.Role)
	if err != nil {
		return errString(err)
	}
	return text
}

func (t *Toolset) buildPortfolio() string {
	md, err := t.Portfolio.Build()
	if err != nil {
		return errString(err)
	}
	return md
}

// Tools materializes the full tool list for the llmagent.
func (t *Toolset) Tools() ([]tool.Tool, error) {
	var (
		tools []tool.Tool
		err   error
	)
	add := func(tl tool.Tool, buildErr error) {
		if err != nil {
			return
		}
		if buildErr != nil {
			err = buildErr
			return
		}
		tools = append(tools, tl)
	}

	add(functiontool.New(functiontool.Config{
		Name:        "read_document",
		Description: "Read a document from the documents folder by file name. Supports txt, md, pdf and docx.",
	}, func(_ tool.Context, args readDocumentArgs) (string, error) {
		return t.readDocument(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "list_documents",
		Description: "List the readable files in the documents folder.",
	}, func(_ tool.Context, _ noArgs) (string, error) {
		return t.listDocuments(), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "write_scratchpad",
		Description: "Append a timestamped note to the scratchpad for things worth remembering between sessions.",
	}, func(_ tool.Context, args writeScratchpadArgs) (string, error) {
		return t.writeScratchpad(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "read_scratchpad",
		Description: "Read the whole scratchpad.",
	}, func(_ tool.Context, _ noArgs) (string, error) {
		return t.readScratchpad(), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "add_job_application",
		Description: "Log a new job application. Company and position are required; status defaults to applied and date_applied to today.",
	}, func(_ tool.Context, args addApplicationArgs) (string, error) {
		return t.addApplication(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "update_job_application",
		Description: "Update a job application selected by id or by exact company name (most recently updated record wins). Notes are appended, never replaced.",
	}, func(_ tool.Context, args updateApplicationArgs) (string, error) {
		return t.updateApplication(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "query_job_applications",
		Description: "List job applications filtered by status, company substring and days back, newest first.",
	}, func(_ tool.Context, args queryApplicationsArgs) (string, error) {
		return t.queryApplications(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "delete_job_application",
		Description: "Delete a job application by id or exact company name.",
	}, func(_ tool.Context, args deleteApplicationArgs) (string, error) {
		return t.deleteApplication(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "log_cold_email",
		Description: "Log a cold email or networking touch. A known recipient email merges into the existing contact instead of creating a duplicate.",
	}, func(_ tool.Context, args logColdEmailArgs) (string, error) {
		return t.logColdEmail(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "update_cold_email",
		Description: "Update a cold email selected by id, recipient email or recipient name. A response_date promotes the status to responded; follow_up_sent records a follow-up sent today.",
	}, func(_ tool.Context, args updateColdEmailArgs) (string, error) {
		return t.updateColdEmail(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "query_cold_emails",
		Description: "List cold emails filtered by status, institution, recipient name, days back or awaiting_response.",
	}, func(_ tool.Context, args queryColdEmailsArgs) (string, error) {
		return t.queryColdEmails(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "network_graph",
		Description: "Render the referral network from the cold-email tracker as a Mermaid graph.",
	}, func(_ tool.Context, _ noArgs) (string, error) {
		return t.networkGraph(), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "search_jobs",
		Description: "Search for job postings and save new ones to the opportunity collection. Metered against the monthly SerpAPI limit; date_posted may be today, 3days, week or month.",
	}, func(ctx tool.Context, args searchJobsArgs) (string, error) {
		return t.searchJobs(ctx, args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "search_scholar",
		Description: "Search Google Scholar for papers and researchers. Shares the monthly SerpAPI limit with job searches.",
	}, func(ctx tool.Context, args searchScholarArgs) (string, error) {
		return t.searchScholar(ctx, args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "query_opportunities",
		Description: "List saved job opportunities filtered by company, title and days back.",
	}, func(_ tool.Context, args queryOpportunitiesArgs) (string, error) {
		return t.queryOpportunities(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "delete_opportunity",
		Description: "Delete a saved job opportunity by id.",
	}, func(_ tool.Context, args opportunityIDArgs) (string, error) {
		return t.deleteOpportunity(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "apply_to_opportunity",
		Description: "Mark a saved opportunity as applied and log a matching job application in the tracker.",
	}, func(_ tool.Context, args opportunityIDArgs) (string, error) {
		return t.applyToOpportunity(args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "usage_report",
		Description: "Report SerpAPI search usage for the current month.",
	}, func(_ tool.Context, _ noArgs) (string, error) {
		return t.usageReport(), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "generate_cover_letter",
		Description: "Generate a cover letter, save it under the letters folder and flag the matching application. Format is markdown or text; cv_file grounds the letter in a real CV.",
	}, func(ctx tool.Context, args coverLetterArgs) (string, error) {
		return t.coverLetter(ctx, args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "elevator_pitch",
		Description: "Write an elevator pitch under 90 words tailored to a company.",
	}, func(ctx tool.Context, args pitchArgs) (string, error) {
		return t.elevatorPitch(ctx, args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "company_brief",
		Description: "Write a one-page research brief on a company ahead of an interview or outreach.",
	}, func(ctx tool.Context, args briefArgs) (string, error) {
		return t.companyBrief(ctx, args), nil
	}))
	add(functiontool.New(functiontool.Config{
		Name:        "build_portfolio",
		Description: "Render the full career portfolio (applications, outreach, opportunities, referral graph) as markdown.",
	}, func(_ tool.Context, _ noArgs) (string, error) {
		return t.buildPortfolio(), nil
	}))

	if err != nil {
		return nil, fmt.Errorf("failed to build tools: %v", err)
	}
	return tools, nil
}
