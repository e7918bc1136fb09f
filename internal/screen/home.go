// Package screen holds the home screen: a year-to-date habit grid that
// refreshes on focus and opens a day's detail on tap.
package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"habits/internal/core"
	applog "habits/internal/log"
	"habits/internal/navigation"
)

var ErrNotNavigable = errors.New("cell does not open a habit detail")

// SummarySource loads and holds the per-day summary.
type SummarySource interface {
	Load(ctx context.Context) error
	Summary() ([]core.SummaryRecord, bool)
	Loading() bool
}

// View is what the grid renderer needs to draw the screen.
type View struct {
	Loading  bool
	WeekDays []string
	// Ready is false until a summary has been loaded; Cells is nil until then.
	Ready bool
	Cells []core.DisplayCell
}

// Options configure a HomeScreen.
type Options struct {
	MinimumSize int
	Location    *time.Location
	Logger      *applog.Logger
}

// HomeScreen wires a summary source to the calendar grid.
type HomeScreen struct {
	source    SummarySource
	navigator navigation.Navigator
	dates     []core.CalendarDate
	minSize   int
	loc       *time.Location
	logger    *applog.Logger

	wg sync.WaitGroup
}

// NewHomeScreen builds the screen for a fixed list of dates, usually
// core.DatesFromYearStart computed once when the screen is created.
func NewHomeScreen(source SummarySource, navigator navigation.Navigator, dates []core.CalendarDate, opts Options) *HomeScreen {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MinimumSize < 0 {
		opts.MinimumSize = 0
	}
	if opts.Logger == nil {
		opts.Logger = applog.FromContext(context.Background())
	}
	return &HomeScreen{
		source:    source,
		navigator: navigator,
		dates:     append([]core.CalendarDate(nil), dates...),
		minSize:   opts.MinimumSize,
		loc:       opts.Location,
		logger:    opts.Logger.WithComponent(applog.ComponentScreen),
	}
}

// Focus starts a summary fetch and returns immediately. Every focus fetches;
// results of older fetches are dropped by the source.
func (s *HomeScreen) Focus(ctx context.Context) {
	s.logger.DebugContext(ctx, "Screen focused", applog.FieldOperation, applog.OpFocus)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// failures are logged and alerted by the source
		_ = s.source.Load(ctx)
	}()
}

// Wait blocks until every fetch started by Focus has returned.
func (s *HomeScreen) Wait() {
	s.wg.Wait()
}

// View returns the current screen state.
func (s *HomeScreen) View() View {
	v := View{
		Loading:  s.source.Loading(),
		WeekDays: append([]string(nil), core.WeekDays...),
	}

	records, ok := s.source.Summary()
	if !ok {
		return v
	}
	v.Ready = true
	v.Cells = core.Reconcile(s.dates, records, s.minSize, s.loc)
	s.logger.Debug("Grid reconciled",
		applog.FieldOperation, applog.OpReconcile,
		applog.FieldRecordCount, len(records),
		applog.FieldCellCount, len(v.Cells),
		applog.FieldFillerCount, len(v.Cells)-len(s.dates))
	return v
}

// Tap opens the detail screen for the cell at index.
func (s *HomeScreen) Tap(ctx context.Context, index int) error {
	v := s.View()
	if index < 0 || index >= len(v.Cells) {
		return fmt.Errorf("%w: index %d out of range", ErrNotNavigable, index)
	}
	cell := v.Cells[index]
	if cell.Filler {
		return fmt.Errorf("%w: index %d is a placeholder", ErrNotNavigable, index)
	}

	event := navigation.HabitDetail(cell.Date)
	s.logger.InfoContext(ctx, "Opening habit detail",
		applog.NewFields().
			WithOperation(applog.OpTap).
			WithNavigation(event.Route, event.Params[navigation.ParamDate]).
			ToSlice()...)

	if err := s.navigator.Navigate(ctx, event); err != nil {
		return fmt.Errorf("navigate to %s: %w", event.Route, err)
	}
	return nil
}
