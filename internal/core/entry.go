package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// EntryInput is an ingestion request as received from a caller. Amount is
// nil when the caller omitted it; a present "0" is a valid amount.
type EntryInput struct {
	Category    string
	Amount      *string
	Description string
	Date        string
}

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Build validates the input and returns the entry to store for the given
// company and kind. ID and CreatedAt are left to the caller.
func (in EntryInput) Build(companyID string, kind MetricKind, now time.Time) (Entry, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" || in.Amount == nil {
		return Entry{}, ErrMissingEntryFields
	}

	amount, err := ParseAmount(*in.Amount)
	if err != nil {
		return Entry{}, err
	}

	date, err := ParseEntryDate(in.Date, now)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		CompanyID: companyID,
		Kind:      kind,
		Date:      date,
		Category:  category,
		Amount:    amount,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		e.Description = &desc
	}
	return e, nil
}

// ParseAmount converts a caller-supplied amount to a finite float64.
//
// A decimal comma is accepted when no dot is present ("12,5" -> 12.5).
// Negative values are allowed; NaN, infinities, magnitudes above
// MaxAbsAmount and trailing garbage are not.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !validAmount(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// ParseEntryDate parses a date-only or date-time string. An empty string
// yields now.
func ParseEntryDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// MaxAbsAmount bounds a single amount so per-kind totals stay finite.
const MaxAbsAmount = 1e15

func validAmount(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) <= MaxAbsAmount
}

// FormatAmount renders an amount with two decimals, the precision used in
// reports and the spreadsheet mirror.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
