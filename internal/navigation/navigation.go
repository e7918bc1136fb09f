// Package navigation describes screen transitions requested by the home screen.
package navigation

import (
	"context"
	"errors"
	"sync"

	"habits/internal/core"
	applog "habits/internal/log"
)

// ParamDate is the parameter carrying the tapped day.
const ParamDate = "date"

var ErrEmptyRoute = errors.New("navigation route cannot be empty")

// Event asks the host to move to Route with Params.
type Event struct {
	Route  string            `json:"route"`
	Params map[string]string `json:"params,omitempty"`
}

// Validate checks the event can be delivered.
func (e Event) Validate() error {
	if e.Route == "" {
		return ErrEmptyRoute
	}
	return nil
}

// HabitDetail builds the event for opening a day's habit detail screen.
func HabitDetail(date core.CalendarDate) Event {
	return Event{
		Route:  core.HabitDetailRoute,
		Params: map[string]string{ParamDate: date.ISOString()},
	}
}

// Navigator delivers navigation events to whatever hosts the screens.
type Navigator interface {
	Navigate(ctx context.Context, event Event) error
}

// Recorder is an in-memory Navigator.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Navigator = (*Recorder)(nil)

func (r *Recorder) Navigate(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns the recorded events in delivery order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// LogNavigator records navigation requests in the log only. Hosts without a
// broker use it.
type LogNavigator struct {
	logger *applog.Logger
}

var _ Navigator = (*LogNavigator)(nil)

func NewLogNavigator(logger *applog.Logger) *LogNavigator {
	return &LogNavigator{logger: logger.WithComponent(applog.ComponentNavigation)}
}

func (n *LogNavigator) Navigate(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "Navigation requested",
		applog.NewFields().
			WithOperation(applog.OpNavigate).
			WithNavigation(event.Route, event.Params[ParamDate]).
			ToSlice()...)
	return nil
}
