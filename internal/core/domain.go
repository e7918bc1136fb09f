package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// HabitDetailRoute is the navigation target for a tapped calendar day.
const HabitDetailRoute = "habit"

type (
	// CalendarDate is a single day at local midnight.
	CalendarDate struct {
		time.Time
	}

	// SummaryRecord is the per-day summary served by GET /summary.
	SummaryRecord struct {
		ID        string    `json:"id"`
		Date      time.Time `json:"date"`
		Available int       `json:"available"`
		Completed int       `json:"completed"`
		// DateOnly marks a date sent without a time of day. Date then holds
		// that day at UTC midnight and names the day as written.
		DateOnly  bool      `json:"-"`
	}
)

var (
	ErrNegativeAvailable = errors.New("available habits cannot be negative")
	ErrNegativeCompleted = errors.New("completed habits cannot be negative")
	ErrCompletedOverflow = errors.New("completed habits exceed available habits")
	ErrMissingDate       = errors.New("summary date is missing")
)

// Validate checks 0 <= completed <= available.
func (r SummaryRecord) Validate() error {
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if r.Available < 0 {
		return ErrNegativeAvailable
	}
	if r.Completed < 0 {
		return ErrNegativeCompleted
	}
	if r.Completed > r.Available {
		return ErrCompletedOverflow
	}
	return nil
}

// UnmarshalJSON accepts RFC 3339 date-times (with or without fractional
// seconds) and plain YYYY-MM-DD dates.
func (r *SummaryRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string `json:"id"`
		Date      string `json:"date"`
		Available int    `json:"available"`
		Completed int    `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, dateOnly, err := ParseSummaryDate(raw.Date)
	if err != nil {
		return err
	}
	*r = SummaryRecord{
		ID:        raw.ID,
		Date:      date,
		Available: raw.Available,
		Completed: raw.Completed,
		DateOnly:  dateOnly,
	}
	return nil
}

// ParseSummaryDate parses the date field of a summary record. dateOnly is
// true for plain YYYY-MM-DD values, which are returned at UTC midnight.
func ParseSummaryDate(value string) (t time.Time, dateOnly bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, ErrMissingDate
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid summary date %q", value)
}

// NewCalendarDate returns the given day at midnight in loc.
func NewCalendarDate(year int, month time.Month, day int, loc *time.Location) CalendarDate {
	if loc == nil {
		loc = time.Local
	}
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// ISOString formats the date the way a JavaScript Date.toISOString does.
func (d CalendarDate) ISOString() string {
	return d.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
