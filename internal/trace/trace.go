package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "habits/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"

	// RequestIDHeader carries the request ID to the summary service.
	RequestIDHeader = "X-Request-ID"
)

// Transport tags outbound requests with a request ID and logs their outcome.
type Transport struct {
	base    http.RoundTripper
	logger  *applog.Logger
	metrics *Metrics
}

// Metrics tracks outbound request metrics
type Metrics struct {
	TotalRequests       int64
	FailedRequests      int64
	AverageResponseTime int64 // in microseconds
}

// NewTransport wraps base, or http.DefaultTransport when base is nil.
func NewTransport(base http.RoundTripper, logger *applog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &Transport{
		base:    base,
		logger:  logger.WithComponent(applog.ComponentTrace).With(applog.FieldCaller, logger.Component()),
		metrics: &Metrics{},
	}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := GetRequestID(req.Context())
	if requestID == "" {
		requestID = GenerateRequestID()
	}

	// RoundTrip must not modify the caller's request
	ctx := context.WithValue(req.Context(), RequestIDKey, requestID)
	out := req.Clone(ctx)
	out.Header.Set(RequestIDHeader, requestID)

	t.logger.DebugContext(ctx, "HTTP request started",
		applog.NewFields().
			WithRequestID(requestID).
			WithHTTPRequest(out.Method, out.URL.Redacted()).
			ToSlice()...)

	atomic.AddInt64(&t.metrics.TotalRequests, 1)

	resp, err := t.base.RoundTrip(out)

	duration := time.Since(start)
	durationMs := duration.Milliseconds()
	atomic.StoreInt64(&t.metrics.AverageResponseTime, duration.Microseconds())

	if err != nil {
		atomic.AddInt64(&t.metrics.FailedRequests, 1)
		t.logger.ErrorContext(ctx, "HTTP request failed",
			applog.NewFields().
				WithRequestID(requestID).
				WithHTTPRequest(out.Method, out.URL.Redacted()).
				WithError(err).
				ToSlice()...)
		return nil, err
	}

	// Use appropriate log level based on status code
	logLevel := slog.LevelInfo
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		logLevel = slog.LevelWarn
	} else if resp.StatusCode >= 500 {
		logLevel = slog.LevelError
	}
	if resp.StatusCode >= 400 {
		atomic.AddInt64(&t.metrics.FailedRequests, 1)
	}

	fields := applog.NewFields().
		WithRequestID(requestID).
		WithHTTPRequest(out.Method, out.URL.Redacted()).
		WithHTTPResponse(resp.StatusCode, durationMs, resp.StatusCode < 400)
	fields[applog.FieldDurationHuman] = duration.String()

	t.logger.Log(ctx, logLevel, "HTTP request completed", fields.ToSlice()...)

	return resp, nil
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

// WithRequestID returns a context whose outbound requests reuse id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (t *Transport) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       atomic.LoadInt64(&t.metrics.TotalRequests),
		FailedRequests:      atomic.LoadInt64(&t.metrics.FailedRequests),
		AverageResponseTime: atomic.LoadInt64(&t.metrics.AverageResponseTime),
	}
}
