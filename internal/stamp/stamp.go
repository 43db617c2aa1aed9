// Package stamp fixes the textual date and timestamp forms shared by the
// trackers. All stamps are taken in UTC. Instants use a fixed-width layout
// so that lexicographic order equals temporal order and "most recent"
// tie-breaks reduce to plain string comparison.
package stamp

import "time"

const (
	// DateLayout is the calendar-date form (date_applied, date_sent, ...).
	DateLayout = "2006-01-02"
	// InstantLayout is the fixed-width form for last_updated, date_discovered
	// and ledger entries. The microsecond padding keeps the width constant.
	InstantLayout = "2006-01-02T15:04:05.000000Z07:00"
	// MonthLayout is the prefix shared by dates and instants of one
	// calendar month, used by the quota ledger.
	MonthLayout = "2006-01"
)

// Date renders t as a UTC calendar date.
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Instant renders t as a fixed-width UTC timestamp.
func Instant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// Month renders t's UTC calendar month.
func Month(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// CutoffDate returns the date daysBack days before t. A record dated >= the
// cutoff (string comparison) falls within the last daysBack days.
func CutoffDate(t time.Time, daysBack int) string {
	return Date(t.UTC().AddDate(0, 0, -daysBack))
}
