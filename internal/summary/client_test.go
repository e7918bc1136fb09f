package summary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"habits/internal/core"
	applog "habits/internal/log"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", 5*time.Second, applog.Discard(), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"http", "http://localhost:3333", false},
		{"https with trailing slash", "https://habits.example.com/", false},
		{"unsupported scheme", "ftp://habits.example.com", true},
		{"no scheme", "localhost:3333", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.baseURL, time.Second, applog.Discard())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestClient_FetchSummary(t *testing.T) {
	var gotPath, gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"a","date":"2024-01-02T03:00:00.000Z","available":5,"completed":2},
			{"id":"b","date":"2024-01-05","available":3,"completed":3}
		]`))
	}, WithToken(" secret "))

	records, err := c.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("FetchSummary: %v", err)
	}

	if gotPath != "/summary" {
		t.Errorf("path = %q, want /summary", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected X-Request-ID header")
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	want := core.SummaryRecord{
		ID:        "a",
		Date:      time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC),
		Available: 5,
		Completed: 2,
	}
	if !records[0].Date.Equal(want.Date) || records[0].ID != want.ID ||
		records[0].Available != want.Available || records[0].Completed != want.Completed {
		t.Errorf("records[0] = %+v, want %+v", records[0], want)
	}
	if records[1].Completed != 3 || records[1].Date.Day() != 5 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestClient_FetchSummaryWithoutToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	records, err := c.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("FetchSummary: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty non-nil slice", records)
	}
}

func TestClient_FetchSummaryErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantIs     error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantStatus: 500},
		{name: "not found", status: http.StatusNotFound, body: ``, wantStatus: 404},
		{name: "malformed json", status: http.StatusOK, body: `[{"id":`},
		{name: "object instead of array", status: http.StatusOK, body: `{"id":"a"}`},
		{name: "trailing data", status: http.StatusOK, body: `[] []`},
		{name: "bad date", status: http.StatusOK, body: `[{"id":"a","date":"yesterday","available":1,"completed":0}]`},
		{
			name:   "completed above available",
			status: http.StatusOK,
			body:   `[{"id":"a","date":"2024-01-01","available":1,"completed":2}]`,
			wantIs: core.ErrCompletedOverflow,
		},
		{
			name:   "negative available",
			status: http.StatusOK,
			body:   `[{"id":"a","date":"2024-01-01","available":-1,"completed":0}]`,
			wantIs: core.ErrNegativeAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			records, err := c.FetchSummary(context.Background())
			if err == nil {
				t.Fatalf("expected error, got records %+v", records)
			}
			if records != nil {
				t.Errorf("records = %+v, want nil on error", records)
			}

			if tt.wantStatus != 0 {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("error %v is not a *StatusError", err)
				}
				if se.StatusCode != tt.wantStatus {
					t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.wantStatus)
				}
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error %v does not wrap %v", err, tt.wantIs)
			}
		})
	}
}

func TestClient_FetchSummaryNullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	records, err := c.FetchSummary(context.Background())
	if err != nil {
		t.Fatalf("FetchSummary: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %#v, want empty non-nil slice", records)
	}
}

func TestClient_FetchSummaryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second, applog.Discard())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.FetchSummary(context.Background()); err == nil {
		t.Fatal("expected error against closed server")
	}
}
