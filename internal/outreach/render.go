package outreach

import (
	"fmt"
	"strings"
)

// RenderNotes flattens note entries into the "[date] text" lines shown to
// the user.
func RenderNotes(notes []Note) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("[%s] %s", n.Date, n.Text))
	}
	return strings.Join(lines, "\n")
}

// FormatUpsert describes the outcome of an Add: a fresh record, a merge
// that picked up new information, or a no-op.
func FormatUpsert(res *UpsertResult) string {
	rec := res.Record
	if res.Created {
		return fmt.Sprintf("✅ Logged cold email to %s (%s) (id: %s, status: %s, sent: %s)",
			rec.RecipientName, rec.RecipientEmail, rec.ID, rec.Status, rec.DateSent)
	}
	if len(res.Changed) == 0 {
		return fmt.Sprintf("Cold email to %s (%s) already recorded (id: %s), nothing new to merge",
			rec.RecipientName, rec.RecipientEmail, rec.ID)
	}
	return fmt.Sprintf("✅ Merged into existing cold email for %s (%s) (id: %s, updated: %s)",
		rec.RecipientName, rec.RecipientEmail, rec.ID, strings.Join(res.Changed, ", "))
}

func FormatUpdated(rec *ColdEmailRecord) string {
	return fmt.Sprintf("✅ Updated cold email for %s (%s) (id: %s, status: %s)",
		rec.RecipientName, rec.RecipientEmail, rec.ID, rec.Status)
}

// FormatColdEmails renders query results, or names the active filters when
// nothing matched.
func FormatColdEmails(recs []ColdEmailRecord, p QueryParams) string {
	if len(recs) == 0 {
		return "No cold emails found with filters: " + describeFilters(p)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d cold email(s):\n", len(recs))
	for i, rec := range recs {
		fmt.Fprintf(&b, "\n%d. %s <%s>\n", i+1, rec.RecipientName, rec.RecipientEmail)
		if rec.Institution != "" {
			fmt.Fprintf(&b, "   Institution: %s\n", rec.Institution)
		}
		fmt.Fprintf(&b, "   Status: %s | Sent: %s\n", rec.Status, rec.DateSent)
		if rec.Subject != "" {
			fmt.Fprintf(&b, "   Subject: %s\n", rec.Subject)
		}
		if rec.ResponseDate != "" {
			fmt.Fprintf(&b, "   Responded: %s\n", rec.ResponseDate)
		}
		if len(rec.FollowUpDates) > 0 {
			fmt.Fprintf(&b, "   Follow-ups: %s\n", strings.Join(rec.FollowUpDates, ", "))
		}
		if rec.ReferredBy != "" {
			fmt.Fprintf(&b, "   Referred by: %s\n", rec.ReferredBy)
		}
		fmt.Fprintf(&b, "   Connection strength: %d/5\n", rec.ConnectionStrength)
		if len(rec.Notes) > 0 {
			fmt.Fprintf(&b, "   Notes:\n%s\n", indent(RenderNotes(rec.Notes), "     "))
		}
		fmt.Fprintf(&b, "   id: %s\n", rec.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeFilters(p QueryParams) string {
	var parts []string
	if p.Status != "" {
		parts = append(parts, "status="+p.Status)
	}
	if p.Institution != "" {
		parts = append(parts, "institution="+p.Institution)
	}
	if p.RecipientName != "" {
		parts = append(parts, "recipient="+p.RecipientName)
	}
	if p.DaysBack > 0 {
		parts = append(parts, fmt.Sprintf("last %d days", p.DaysBack))
	}
	if p.AwaitingResponse {
		parts = append(parts, "awaiting response")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
