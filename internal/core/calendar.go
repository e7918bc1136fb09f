package core

import "time"

// DatesFromYearStart lists every day from January 1st of now's year up to and
// including now's day, in chronological order. Days are midnight in loc.
func DatesFromYearStart(now time.Time, loc *time.Location) []CalendarDate {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)

	dates := make([]CalendarDate, 0, now.YearDay())
	for d := start; d.Before(now) || d.Equal(now); d = d.AddDate(0, 0, 1) {
		dates = append(dates, CalendarDate{Time: d})
	}
	return dates
}

// SameDay reports whether a and b fall on the same calendar day in loc,
// ignoring the time of day.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return dayKeyOf(a, loc) == dayKeyOf(b, loc)
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func dayKeyOf(t time.Time, loc *time.Location) dayKey {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return dayKey{year: y, month: m, day: d}
}

// recordDayKey is the calendar day a record belongs to. Date-only records
// keep the day they were written with; instants are read in loc.
func recordDayKey(r SummaryRecord, loc *time.Location) dayKey {
	if r.DateOnly {
		y, m, d := r.Date.UTC().Date()
		return dayKey{year: y, month: m, day: d}
	}
	return dayKeyOf(r.Date, loc)
}
