package discovery

import (
	"fmt"
	"strings"
)

// FormatSearchResult turns a search outcome into the text shown in chat.
func FormatSearchResult(res *SearchResult) string {
	if res.Error != "" {
		return fmt.Sprintf("❌ Job search failed: %s\n%s", res.Error, usageLine(res.Usage))
	}
	if res.Warning != "" && len(res.Jobs) == 0 {
		return fmt.Sprintf("⚠️ %s\n%s", res.Warning, usageLine(res.Usage))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d job(s), %d new saved.\n", len(res.Jobs), res.NewJobs)
	for i, job := range res.Jobs {
		fmt.Fprintf(&b, "\n%d. %s — %s\n", i+1, job.Title, job.Company)
		line := job.Location
		if job.Via != "" {
			if line != "" {
				line += " | "
			}
			line += job.Via
		}
		if line != "" {
			fmt.Fprintf(&b, "   %s\n", line)
		}
		if job.PostedAt != "" || job.Salary != "" {
			extras := []string{}
			if job.PostedAt != "" {
				extras = append(extras, "Posted: "+job.PostedAt)
			}
			if job.Salary != "" {
				extras = append(extras, "Salary: "+job.Salary)
			}
			fmt.Fprintf(&b, "   %s\n", strings.Join(extras, " | "))
		}
		if job.Link != "" {
			fmt.Fprintf(&b, "   %s\n", job.Link)
		}
	}
	fmt.Fprintf(&b, "\n%s", usageLine(res.Usage))
	if res.Warning != "" {
		fmt.Fprintf(&b, "\n⚠️ %s", res.Warning)
	}
	return b.String()
}

// FormatScholarResult renders publication results.
func FormatScholarResult(res *ScholarResult) string {
	if res.Error != "" {
		return fmt.Sprintf("❌ Scholar search failed: %s\n%s", res.Error, usageLine(res.Usage))
	}
	if res.Warning != "" && len(res.Papers) == 0 {
		return fmt.Sprintf("⚠️ %s\n%s", res.Warning, usageLine(res.Usage))
	}
	if len(res.Papers) == 0 {
		return "No publications found.\n" + usageLine(res.Usage)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d publication(s):\n", len(res.Papers))
	for i, p := range res.Papers {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p.Title)
		if p.CitedBy > 0 {
			fmt.Fprintf(&b, " (cited by %d)", p.CitedBy)
		}
		b.WriteString("\n")
		if p.Summary != "" {
			fmt.Fprintf(&b, "   %s\n", p.Summary)
		}
		if p.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", p.Snippet)
		}
		if p.Link != "" {
			fmt.Fprintf(&b, "   %s\n", p.Link)
		}
	}
	fmt.Fprintf(&b, "\n%s", usageLine(res.Usage))
	if res.Warning != "" {
		fmt.Fprintf(&b, "\n⚠️ %s", res.Warning)
	}
	return b.String()
}

// FormatOpportunities renders stored postings, or names the filters when
// nothing matched.
func FormatOpportunities(recs []JobOpportunity, p QueryParams) string {
	if len(recs) == 0 {
		return "No job opportunities found with filters: " + describeFilters(p)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d job opportunity(ies):\n", len(recs))
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n%d. %s — %s\n", i+1, rec.Title, rec.Company)
		if rec.Location != "" {
			fmt.Fprintf(&b, "   %s\n", rec.Location)
		}
		if rec.Salary != "" {
			fmt.Fprintf(&b, "   Salary: %s\n", rec.Salary)
		}
		fmt.Fprintf(&b, "   Discovered: %s (search: %q)\n", shortDate(rec.DateDiscovered), rec.SearchQuery)
		if rec.Applied {
			b.WriteString("   ✅ applied\n")
		}
		if rec.Link != "" {
			fmt.Fprintf(&b, "   %s\n", rec.Link)
		}
		fmt.Fprintf(&b, "   id: %s\n", rec.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatDeleted(rec *JobOpportunity) string {
	return fmt.Sprintf("Deleted opportunity %s — %s (id: %s)", rec.Title, rec.Company, rec.ID)
}

func FormatMarkedApplied(rec *JobOpportunity) string {
	return fmt.Sprintf("✅ Marked %s — %s as applied (id: %s)", rec.Title, rec.Company, rec.ID)
}

// FormatReport renders the quota diagnostic view.
func FormatReport(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SerpAPI usage this month: %d/%d (%.1f%%), %d searches remaining\n",
		r.Used, r.Limit, r.Percent, r.Remaining)
	if len(r.Recent) == 0 {
		b.WriteString("No searches recorded this month.\n")
	} else {
		b.WriteString("Recent searches:\n")
		for _, e := range r.Recent {
			fmt.Fprintf(&b, "  [%s] %s (%d results)\n", shortDate(e.Date), e.Query, e.ResultsCount)
		}
	}
	b.WriteString("Usage resets on the 1st of each month.")
	return b.String()
}

func usageLine(u Usage) string {
	return fmt.Sprintf("Usage: %d/%d searches this month (%d remaining)", u.Used, u.Limit, u.Remaining)
}

func shortDate(instant string) string {
	if len(instant) >= 10 {
		return instant[:10]
	}
	return instant
}

func describeFilters(p QueryParams) string {
	var parts []string
	if p.Company != "" {
		parts = append(parts, "company="+p.Company)
	}
	if p.Title != "" {
		parts = append(parts, "title="+p.Title)
	}
	if p.DaysBack > 0 {
		parts = append(parts, fmt.Sprintf("last %d days", p.DaysBack))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
