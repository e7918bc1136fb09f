// Package render draws the home screen grid on a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"habits/internal/core"
	"habits/internal/screen"
)

const (
	daysPerRow = 7
	cellWidth  = 4
)

// background colours by progress level; index 0 is "nothing completed"
var levelColors = []lipgloss.Color{
	lipgloss.Color("#18181b"),
	lipgloss.Color("#4c1d95"),
	lipgloss.Color("#5b21b6"),
	lipgloss.Color("#6d28d9"),
	lipgloss.Color("#7c3aed"),
	lipgloss.Color("#8b5cf6"),
}

var fillerColor = lipgloss.Color("#27272a")

// progressLevel buckets a cell's completion percentage: 0, <20, <40, <60,
// <80 and the rest.
func progressLevel(cell core.DisplayCell) int {
	p := cell.Progress()
	switch {
	case p <= 0:
		return 0
	case p < 20:
		return 1
	case p < 40:
		return 2
	case p < 60:
		return 3
	case p < 80:
		return 4
	default:
		return 5
	}
}

// Grid writes the week header and the cells of v, seven per row.
func Grid(w io.Writer, v screen.View) error {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().Width(cellWidth).Align(lipgloss.Center)

	var b strings.Builder

	header := make([]string, 0, len(v.WeekDays))
	for _, d := range v.WeekDays {
		header = append(header, base.Foreground(lipgloss.Color("243")).Render(d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteByte('\n')

	row := make([]string, 0, daysPerRow)
	for i, cell := range v.Cells {
		row = append(row, renderCell(base, cell))
		if len(row) == daysPerRow || i == len(v.Cells)-1 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
			b.WriteByte('\n')
			row = row[:0]
		}
	}

	if v.Loading {
		b.WriteString(r.NewStyle().Faint(true).Render("loading..."))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write grid: %w", err)
	}
	return nil
}

func renderCell(base lipgloss.Style, cell core.DisplayCell) string {
	if cell.Filler {
		return base.Background(fillerColor).Faint(true).Render("")
	}
	return base.
		Background(levelColors[progressLevel(cell)]).
		Foreground(lipgloss.Color("255")).
		Render(fmt.Sprintf("%d", cell.Date.Day()))
}
