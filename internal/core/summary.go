package core

import (
	"math"
	"time"
)

// MinimumSummaryDatesSize is the cell count of one full screen of the grid.
const MinimumSummaryDatesSize = 18 * 4

// WeekDays is the grid header, Sunday first.
var WeekDays = []string{"D", "S", "T", "Q", "Q", "S", "S"}

// DisplayCell is one entry of the rendered grid. Nil counters mean the day
// has no summary record, which is not the same as zero habits.
type DisplayCell struct {
	Date      CalendarDate `json:"date"`
	Filler    bool         `json:"filler,omitempty"`
	Available *int         `json:"available,omitempty"`
	Completed *int         `json:"completed,omitempty"`
}

// HasData reports whether a summary record matched this cell.
func (c DisplayCell) HasData() bool {
	return c.Available != nil && c.Completed != nil
}

// Progress returns completed/available as a rounded percentage.
func (c DisplayCell) Progress() int {
	if !c.HasData() || *c.Available <= 0 {
		return 0
	}
	return int(math.Round(float64(*c.Completed) / float64(*c.Available) * 100))
}

// NavigationDate is the detail-view parameter for this cell. Filler cells
// return an empty string.
func (c DisplayCell) NavigationDate() string {
	if c.Filler {
		return ""
	}
	return c.Date.ISOString()
}

// Reconcile pairs every date with the first record on the same calendar day
// and pads the result with filler cells up to minimumSize.
func Reconcile(dates []CalendarDate, records []SummaryRecord, minimumSize int, loc *time.Location) []DisplayCell {
	byDay := make(map[dayKey]SummaryRecord, len(records))
	for _, r := range records {
		k := recordDayKey(r, loc)
		// first record for a day wins
		if _, ok := byDay[k]; !ok {
			byDay[k] = r
		}
	}

	fillCount := minimumSize - len(dates)
	if fillCount < 0 {
		fillCount = 0
	}

	cells := make([]DisplayCell, 0, len(dates)+fillCount)
	for _, d := range dates {
		cell := DisplayCell{Date: d}
		if r, ok := byDay[dayKeyOf(d.Time, loc)]; ok {
			available, completed := r.Available, r.Completed
			cell.Available = &available
			cell.Completed = &completed
		}
		cells = append(cells, cell)
	}
	for i := 0; i < fillCount; i++ {
		cells = append(cells, DisplayCell{Filler: true})
	}
	return cells
}
