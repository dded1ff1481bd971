package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date accepted by filters and forms.
const DateLayout = "2006-01-02"

type (
	// DateRange holds optional inclusive calendar-day bounds.
	DateRange struct {
		Start *time.Time
		End   *time.Time
	}

	ExpenseFilter struct {
		Range    DateRange
		Category string // exact match, empty means any
	}

	DayTotal struct {
		Day   time.Time
		Total decimal.Decimal
	}

	SeriesPoint struct {
		Label  string
		Amount decimal.Decimal
	}
)

// ParseFilterDate returns nil for empty or malformed input so that a bad
// query string never blocks rendering.
func ParseFilterDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// NewDateRange parses both bounds. When end precedes start it returns an
// unbounded range together with ErrInvalidRange.
func NewDateRange(start, end string) (DateRange, error) {
	r := DateRange{Start: ParseFilterDate(start), End: ParseFilterDate(end)}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Contains compares calendar days only.
func (r DateRange) Contains(t time.Time) bool {
	day := t.Format(DateLayout)
	if r.Start != nil && day < r.Start.Format(DateLayout) {
		return false
	}
	if r.End != nil && day > r.End.Format(DateLayout) {
		return false
	}
	return true
}

// ParseEntryDate resolves the date of a submitted expense or saving. An
// absent value resolves to now; an unparsable one also resolves to now and
// reports fellBack so the caller can warn.
func ParseEntryDate(s string, now time.Time) (t time.Time, fellBack bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, false
	}
	t, err := time.ParseInLocation(DateLayout, s, now.Location())
	if err != nil {
		return now, true
	}
	return t, false
}
