// Package discovery finds job postings through the metered search API,
// dedups them into the opportunity collection, and accounts for every
// successful call in a monthly usage ledger. The ledger is the admission
// gate: once the month's count reaches the limit no external call is made.
package discovery

import (
	"errors"
	"strings"
)

// DefaultMonthlyLimit is the ledger limit written into a fresh usage file.
const DefaultMonthlyLimit = 100

// maxResultsPerCall is the upstream ceiling per search call.
const maxResultsPerCall = 10

var (
	// ErrNotFound means no opportunity matched the given id.
	ErrNotFound = errors.New("discovery: no opportunity with that id")
	// ErrEmptyQuery rejects searches without a query string.
	ErrEmptyQuery = errors.New("discovery: query is required")
)

// JobOpportunity is one stored posting. Identity for dedup is the
// case-insensitive (company, title, location) triple; the id is only a
// display and delete handle.
type JobOpportunity struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Link           string `json:"link"`
	Description    string `json:"description"`
	Via            string `json:"via"`
	DatePosted     string `json:"date_posted"`
	Salary         string `json:"salary"`
	DateDiscovered string `json:"date_discovered"`
	SearchQuery    string `json:"search_query"`
	Applied        bool   `json:"applied"`
}

// JobCollection is the stored opportunity document.
type JobCollection struct {
	Jobs []JobOpportunity `json:"jobs"`
}

func EmptyJobCollection() JobCollection {
	return JobCollection{Jobs: []JobOpportunity{}}
}

// LedgerEntry is one consumed search. Date is a UTC instant whose YYYY-MM
// prefix assigns the entry to a calendar month.
type LedgerEntry struct {
	Date         string `json:"date"`
	Query        string `json:"query"`
	ResultsCount int    `json:"results_count"`
}

// UsageLedger is the stored quota document. Searches only ever grows;
// entries from past months stay on file.
type UsageLedger struct {
	MonthlyLimit int           `json:"monthly_limit"`
	Searches     []LedgerEntry `json:"searches"`
}

func EmptyLedger() UsageLedger {
	return UsageLedger{MonthlyLimit: DefaultMonthlyLimit, Searches: []LedgerEntry{}}
}

// Usage is the quota snapshot attached to search results.
type Usage struct {
	Used      int `json:"used_this_month"`
	Limit     int `json:"monthly_limit"`
	Remaining int `json:"remaining"`
}

func dedupKey(company, title, location string) string {
	return strings.ToLower(company + "|" + title + "|" + location)
}
