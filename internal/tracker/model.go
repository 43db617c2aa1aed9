// Package tracker maintains the job application collection: add, update,
// query, delete, and the cover-letter flag that letter generation sets as a
// side effect. Every operation loads the full collection, works on it, and
// writes it back whole.
package tracker

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a job application. The set is closed;
// anything else is rejected before a write happens.
type Status string

const (
	StatusApplied            Status = "applied"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusInterviewed        Status = "interviewed"
	StatusRejected           Status = "rejected"
	StatusOffer              Status = "offer"
	StatusAccepted           Status = "accepted"
)

var statusOrder = []Status{
	StatusApplied,
	StatusInterviewScheduled,
	StatusInterviewed,
	StatusRejected,
	StatusOffer,
	StatusAccepted,
}

var (
	// ErrInvalidStatus rejects writes carrying an unknown status value.
	ErrInvalidStatus = errors.New("tracker: invalid status")
	// ErrNotFound means no record matched the given id or company.
	ErrNotFound = errors.New("tracker: no matching application")
	// ErrNoSelector means neither an id nor a company was provided.
	ErrNoSelector = errors.New("tracker: provide an application id or a company name")
	// ErrMissingFields rejects adds without the two required fields.
	ErrMissingFields = errors.New("tracker: company and position are required")
)

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

// ApplicationRecord is one application event. Reapplying to the same
// company and position creates a second record; id is the only unique key.
type ApplicationRecord struct {
	ID                   string   `json:"id"`
	Company              string   `json:"company"`
	Position             string   `json:"position"`
	Status               Status   `json:"status"`
	DateApplied          string   `json:"date_applied"`
	ApplicationDeadline  string   `json:"application_deadline"`
	JobDescription       string   `json:"job_description"`
	CoverLetterGenerated bool     `json:"cover_letter_generated"`
	NextAction           string   `json:"next_action"`
	Notes                []Note   `json:"notes"`
	Contacts             []string `json:"contacts"`
	LastUpdated          string   `json:"last_updated"`
}

// Collection is the stored document: one top-level key over an ordered list.
type Collection struct {
	Applications []ApplicationRecord `json:"applications"`
}

// EmptyCollection is the document a fresh store starts from.
func EmptyCollection() Collection {
	return Collection{Applications: []ApplicationRecord{}}
}
