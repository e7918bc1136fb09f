package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"habits/internal/core"
	"habits/internal/screen"
)

func intPtr(v int) *int { return &v }

func dataCell(available, completed int) core.DisplayCell {
	return core.DisplayCell{
		Date:      core.NewCalendarDate(2024, time.January, 1, time.UTC),
		Available: intPtr(available),
		Completed: intPtr(completed),
	}
}

func TestProgressLevel(t *testing.T) {
	tests := []struct {
		name string
		cell core.DisplayCell
		want int
	}{
		{"no data", core.DisplayCell{}, 0},
		{"nothing available", dataCell(0, 0), 0},
		{"nothing completed", dataCell(5, 0), 0},
		{"10 percent", dataCell(10, 1), 1},
		{"20 percent", dataCell(5, 1), 2},
		{"50 percent", dataCell(4, 2), 3},
		{"60 percent", dataCell(5, 3), 4},
		{"80 percent", dataCell(5, 4), 5},
		{"all done", dataCell(3, 3), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressLevel(tt.cell); got != tt.want {
				t.Errorf("progressLevel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGrid(t *testing.T) {
	dates := make([]core.CalendarDate, 10)
	for i := range dates {
		dates[i] = core.NewCalendarDate(2024, time.January, i+1, time.UTC)
	}
	cells := core.Reconcile(dates, nil, 16, time.UTC)

	tests := []struct {
		name      string
		view      screen.View
		wantLines int
		loading   bool
	}{
		{
			name:      "ready",
			view:      screen.View{WeekDays: core.WeekDays, Ready: true, Cells: cells},
			wantLines: 1 + 3,
		},
		{
			name:      "loading before first summary",
			view:      screen.View{WeekDays: core.WeekDays, Loading: true},
			wantLines: 1 + 1,
			loading:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Grid(&buf, tt.view); err != nil {
				t.Fatalf("Grid: %v", err)
			}
			out := buf.String()

			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d:\n%s", len(lines), tt.wantLines, out)
			}
			if !strings.Contains(lines[0], "D") || !strings.Contains(lines[0], "Q") {
				t.Errorf("header line = %q", lines[0])
			}
			if strings.Contains(out, "loading...") != tt.loading {
				t.Errorf("loading line presence = %v, want %v", !tt.loading, tt.loading)
			}
		})
	}
}
