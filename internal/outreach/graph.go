package outreach

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// BuildGraph renders the collection as a Mermaid flowchart: one node per
// contact (styled once they have responded), one node per distinct
// institution string with a "works at" edge, and "referred" edges from the
// referrer. The referrer is a tracked contact when referred_by resolves by
// id or exact name, otherwise a synthesized external node shared by every
// record naming the same referrer. Node ids are pure functions of record
// ids and verbatim strings, so unchanged data always yields a structurally
// identical graph.
//
// Institution node identity is the case-sensitive verbatim string, while
// query filters match institutions case-insensitively. That mismatch is
// kept on purpose.
func BuildGraph(emails []ColdEmailRecord) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	b.WriteString("    classDef responded fill:#d4edda,stroke:#28a745,color:#1e4620\n")
	b.WriteString("    classDef pending fill:#fff3cd,stroke:#b8860b,color:#533f03\n")
	b.WriteString("    classDef external fill:#e2e3e5,stroke:#6c757d,color:#343a40\n")
	b.WriteString("    classDef institution fill:#cce5ff,stroke:#004085,color:#002752\n")

	instIDs := map[string]string{}
	for i := range emails {
		rec := &emails[i]
		personID := "P_" + rec.ID
		label := rec.RecipientName
		if label == "" {
			label = rec.RecipientEmail
		}
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", personID, escapeLabel(label))
		if rec.Responded() {
			fmt.Fprintf(&b, "    class %s responded\n", personID)
		} else {
			fmt.Fprintf(&b, "    class %s pending\n", personID)
		}

		if rec.Institution != "" {
			instID, seen := instIDs[rec.Institution]
			if !seen {
				instID = "I_" + hashID(rec.Institution)
				instIDs[rec.Institution] = instID
				fmt.Fprintf(&b, "    %s(\"%s\")\n", instID, escapeLabel(rec.Institution))
				fmt.Fprintf(&b, "    class %s institution\n", instID)
			}
			fmt.Fprintf(&b, "    %s -->|works at| %s\n", personID, instID)
		}
	}

	externalIDs := map[string]string{}
	for i := range emails {
		rec := &emails[i]
		ref := strings.TrimSpace(rec.ReferredBy)
		if ref == "" {
			continue
		}
		personID := "P_" + rec.ID

		if resolved := findReferrer(emails, ref); resolved >= 0 {
			fmt.Fprintf(&b, "    P_%s -->|referred| %s\n", emails[resolved].ID, personID)
			continue
		}

		key := strings.ToLower(ref)
		extID, seen := externalIDs[key]
		if !seen {
			extID = "X_" + hashID(key)
			externalIDs[key] = extID
			fmt.Fprintf(&b, "    %s((\"%s\"))\n", extID, escapeLabel(ref))
			fmt.Fprintf(&b, "    class %s external\n", extID)
		}
		fmt.Fprintf(&b, "    %s -->|referred| %s\n", extID, personID)
	}

	return strings.TrimRight(b.String(), "\n")
}

// findReferrer resolves referred_by against tracked contacts by record id
// or exact name, case-insensitively. First match wins.
func findReferrer(emails []ColdEmailRecord, ref string) int {
	for i := range emails {
		if emails[i].ID == ref || strings.EqualFold(emails[i].RecipientName, ref) {
			return i
		}
	}
	return -1
}

func hashID(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// escapeLabel keeps quoted Mermaid labels parseable.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}
