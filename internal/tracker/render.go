package tracker

import (
	"fmt"
	"strings"
)

// RenderNotes joins the append-only log into "[date] text" display lines.
func RenderNotes(notes []Note) string {
	if len(notes) == 0 {
		return ""
	}
	lines := make([]string, len(notes))
	for i, n := range notes {
		lines[i] = fmt.Sprintf("[%s] %s", n.Date, n.Text)
	}
	return strings.Join(lines, "\n")
}

// FormatAdded is the confirmation the agent reads back after an add.
func FormatAdded(rec *ApplicationRecord) string {
	return fmt.Sprintf("✅ Added application for %s - %s (id: %s, status: %s, applied: %s)",
		rec.Company, rec.Position, rec.ID, rec.Status, rec.DateApplied)
}

// FormatUpdated confirms an update with the record's current state.
func FormatUpdated(rec *ApplicationRecord) string {
	return fmt.Sprintf("✅ Updated application for %s - %s (id: %s, status: %s)",
		rec.Company, rec.Position, rec.ID, rec.Status)
}

// FormatDeleted confirms a delete.
func FormatDeleted(rec *ApplicationRecord) string {
	return fmt.Sprintf("Deleted application for %s - %s (id: %s)",
		rec.Company, rec.Position, rec.ID)
}

// FormatApplications renders a query result. An empty result names the
// filters so "nothing matched" reads differently from an error.
func FormatApplications(apps []ApplicationRecord, p QueryParams) string {
	if len(apps) == 0 {
		return "No applications found with filters: " + describeFilters(p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d application(s):\n", len(apps))
	for i, rec := range apps {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, rec.Company, rec.Position)
		fmt.Fprintf(&b, "   Status: %s | Applied: %s\n", rec.Status, rec.DateApplied)
		if rec.ApplicationDeadline != "" {
			fmt.Fprintf(&b, "   Deadline: %s\n", rec.ApplicationDeadline)
		}
		if rec.NextAction != "" {
			fmt.Fprintf(&b, "   Next action: %s\n", rec.NextAction)
		}
		if len(rec.Contacts) > 0 {
			fmt.Fprintf(&b, "   Contacts: %s\n", strings.Join(rec.Contacts, ", "))
		}
		if rec.CoverLetterGenerated {
			b.WriteString("   Cover letter: generated ✅\n")
		}
		if notes := RenderNotes(rec.Notes); notes != "" {
			fmt.Fprintf(&b, "   Notes:\n%s\n", indent(notes, "   "))
		}
		fmt.Fprintf(&b, "   id: %s\n", rec.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeFilters(p QueryParams) string {
	var parts []string
	if strings.TrimSpace(p.Status) != "" {
		parts = append(parts, "status="+strings.ToLower(strings.TrimSpace(p.Status)))
	}
	if p.Company != "" {
		parts = append(parts, "company="+p.Company)
	}
	if p.DaysBack > 0 {
		parts = append(parts, fmt.Sprintf("last %d days", p.DaysBack))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
