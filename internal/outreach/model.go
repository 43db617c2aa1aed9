// Package outreach maintains the cold-email collection and derives the
// referral network graph from it. Contacts are identified by their email
// address (case-insensitive): adding an address twice merges into the
// existing record instead of duplicating it, and records are never deleted.
package outreach

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the state of one outreach thread.
type Status string

const (
	StatusSent         Status = "sent"
	StatusResponded    Status = "responded"
	StatusNoResponse   Status = "no_response"
	StatusFollowUpSent Status = "follow_up_sent"
)

var statusOrder = []Status{StatusSent, StatusResponded, StatusNoResponse, StatusFollowUpSent}

var (
	// ErrInvalidStatus rejects writes carrying an unknown status value.
	ErrInvalidStatus = errors.New("outreach: invalid status")
	// ErrNotFound means no record matched the given id, email, or name.
	ErrNotFound = errors.New("outreach: no matching cold email")
	// ErrNoSelector means no identifying argument was provided.
	ErrNoSelector = errors.New("outreach: provide an id, recipient email, or recipient name")
	// ErrMissingFields rejects adds without the two required fields.
	ErrMissingFields = errors.New("outreach: recipient name and email are required")
)

// AmbiguousMatchError reports a name-substring resolution that matched more
// than one contact. Nothing is mutated when it is returned; the caller must
// retry with an id or a full email address.
type AmbiguousMatchError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("outreach: recipient name %q matches %d contacts: %s",
		e.Name, len(e.Candidates), strings.Join(e.Candidates, "; "))
}

func isKnownStatus(s Status) bool {
	for _, known := range statusOrder {
		if s == known {
			return true
		}
	}
	return false
}

func statusNames() string {
	names := make([]string, len(statusOrder))
	for i, s := range statusOrder {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func parseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !isKnownStatus(s) {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrInvalidStatus, raw, statusNames())
	}
	return s, nil
}

// Note is one dated entry in a record's append-only notes log.
type Note struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// ColdEmailRecord is one outreach contact and the history of touches
// against them. follow_up_dates and notes only ever grow.
type ColdEmailRecord struct {
	ID                 string   `json:"id"`
	RecipientName      string   `json:"recipient_name"`
	RecipientEmail     string   `json:"recipient_email"`
	Institution        string   `json:"institution"`
	Subject            string   `json:"subject"`
	Purpose            string   `json:"purpose"`
	DateSent           string   `json:"date_sent"`
	Status             Status   `json:"status"`
	ResponseDate       string   `json:"response_date"`
	FollowUpDates      []string `json:"follow_up_dates"`
	Notes              []Note   `json:"notes"`
	LastUpdated        string   `json:"last_updated"`
	ReferredBy         string   `json:"referred_by"`
	ConnectionStrength int      `json:"connection_strength"`
}

// Responded reports whether the contact has replied.
func (r *ColdEmailRecord) Responded() bool {
	return r.ResponseDate != "" || r.Status == StatusResponded
}

// Collection is the stored document: one top-level key over an ordered list.
type Collection struct {
	Emails []ColdEmailRecord `json:"emails"`
}

// EmptyCollection is the document a fresh store starts from.
func EmptyCollection() Collection {
	return Collection{Emails: []ColdEmailRecord{}}
}

// clampStrength folds any input into the 1 (weak) to 5 (strong) scale;
// zero means unspecified and becomes the default 1.
func clampStrength(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
