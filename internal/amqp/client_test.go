package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"habits/internal/core"
	applog "habits/internal/log"
	"habits/internal/navigation"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestScreenEventFromJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantType  ScreenEventType
		wantIndex int
		wantErr   error
		anyErr    bool
	}{
		{name: "focus", body: `{"type":"focus"}`, wantType: ScreenEventFocus},
		{name: "tap", body: `{"type":"tap","index":12}`, wantType: ScreenEventTap, wantIndex: 12},
		{name: "tap on first cell", body: `{"type":"tap","index":0}`, wantType: ScreenEventTap},
		{name: "tap without index", body: `{"type":"tap"}`, wantErr: ErrMissingTapIndex},
		{name: "tap with negative index", body: `{"type":"tap","index":-3}`, wantErr: ErrMissingTapIndex},
		{name: "unknown type", body: `{"type":"scroll"}`, wantErr: ErrUnknownEventType},
		{name: "not json", body: `focus`, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ScreenEventFromJSON([]byte(tt.body))
			if tt.wantErr != nil || tt.anyErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", ev)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScreenEventFromJSON: %v", err)
			}
			if ev.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", ev.Type, tt.wantType)
			}
			if tt.wantType == ScreenEventTap && *ev.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", *ev.Index, tt.wantIndex)
			}
		})
	}
}

func TestNavigationMessageJSON(t *testing.T) {
	event := navigation.HabitDetail(core.NewCalendarDate(2024, time.February, 29, time.UTC))

	body, err := NewNavigationMessage(event).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var decoded struct {
		Route  string            `json:"route"`
		Params map[string]string `json:"params"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Route != "habit" {
		t.Errorf("route = %q, want habit", decoded.Route)
	}
	if decoded.Params["date"] != "2024-02-29T00:00:00.000Z" {
		t.Errorf("date = %q", decoded.Params["date"])
	}
}

func TestClient_HandleDelivery(t *testing.T) {
	c := &Client{queueName: "home_screen_events", logger: applog.Discard()}
	handlerErr := errors.New("navigator unavailable")

	tests := []struct {
		name        string
		body        string
		redelivered bool
		handlerErr  error
		wantCalls   int
		wantAcks    int
		wantNacks   int
		wantRequeue bool
	}{
		{name: "handled", body: `{"type":"focus"}`, wantCalls: 1, wantAcks: 1},
		{name: "malformed is dropped", body: `{"type":`, wantNacks: 1},
		{name: "invalid is dropped", body: `{"type":"tap"}`, wantNacks: 1},
		{
			name:        "handler failure is requeued once",
			body:        `{"type":"tap","index":1}`,
			handlerErr:  handlerErr,
			wantCalls:   1,
			wantNacks:   1,
			wantRequeue: true,
		},
		{
			name:        "redelivered failure is dropped",
			body:        `{"type":"tap","index":1}`,
			redelivered: true,
			handlerErr:  handlerErr,
			wantCalls:   1,
			wantNacks:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			calls := 0
			handler := func(ctx context.Context, ev *ScreenEvent) error {
				calls++
				return tt.handlerErr
			}

			c.handleDelivery(context.Background(), amqp091.Delivery{
				Acknowledger: ack,
				Body:         []byte(tt.body),
				Redelivered:  tt.redelivered,
			}, handler)

			if calls != tt.wantCalls {
				t.Errorf("handler calls = %d, want %d", calls, tt.wantCalls)
			}
			if ack.acks != tt.wantAcks || ack.nacks != tt.wantNacks {
				t.Errorf("acks/nacks = %d/%d, want %d/%d", ack.acks, ack.nacks, tt.wantAcks, tt.wantNacks)
			}
			if ack.requeue != tt.wantRequeue {
				t.Errorf("requeue = %v, want %v", ack.requeue, tt.wantRequeue)
			}
		})
	}
}

func TestClient_NavigateRejectsEmptyRoute(t *testing.T) {
	c := &Client{logger: applog.Discard()}
	if err := c.Navigate(context.Background(), navigation.Event{}); !errors.Is(err, navigation.ErrEmptyRoute) {
		t.Fatalf("Navigate error = %v, want ErrEmptyRoute", err)
	}
}
