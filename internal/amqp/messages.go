package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"habits/internal/navigation"
)

// ScreenEventType names what happened on the home screen.
type ScreenEventType string

const (
	ScreenEventFocus ScreenEventType = "focus"
	ScreenEventTap   ScreenEventType = "tap"
)

var (
	ErrUnknownEventType = errors.New("unknown screen event type")
	ErrMissingTapIndex  = errors.New("tap event requires a non-negative index")
)

// ScreenEvent is a user interaction forwarded by the host UI.
type ScreenEvent struct {
	Type  ScreenEventType `json:"type"`
	Index *int            `json:"index,omitempty"`
}

// Validate checks the event is one the screen understands.
func (e *ScreenEvent) Validate() error {
	switch e.Type {
	case ScreenEventFocus:
		return nil
	case ScreenEventTap:
		if e.Index == nil || *e.Index < 0 {
			return ErrMissingTapIndex
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}
}

// ScreenEventFromJSON decodes and validates a screen event.
func ScreenEventFromJSON(data []byte) (*ScreenEvent, error) {
	var ev ScreenEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// NavigationMessage is the published form of a navigation event.
type NavigationMessage struct {
	Route     string            `json:"route"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewNavigationMessage stamps event with the current time.
func NewNavigationMessage(event navigation.Event) *NavigationMessage {
	return &NavigationMessage{
		Route:     event.Route,
		Params:    event.Params,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NavigationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
