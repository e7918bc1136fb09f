package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"habits/internal/core"
	applog "habits/internal/log"
	"habits/internal/trace"
)

const (
	summaryPath     = "/summary"
	maxResponseSize = 1 << 20
)

// Fetcher returns the per-day summary from the remote service.
type Fetcher interface {
	FetchSummary(ctx context.Context) ([]core.SummaryRecord, error)
}

// Client talks to the habits API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Ensure interface conformance
var _ Fetcher = (*Client)(nil)

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *applog.Logger, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse summary API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported summary API URL scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: newHTTPClientWithPooling(timeout, logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newHTTPClientWithPooling creates the transport collaborator. The timeout is
// the transport's, the loader itself enforces none.
func newHTTPClientWithPooling(timeout time.Duration, logger *applog.Logger) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: trace.NewTransport(transport, logger),
		Timeout:   timeout,
	}
}

// FetchSummary implements Fetcher.
func (c *Client) FetchSummary(ctx context.Context) ([]core.SummaryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+summaryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build summary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	records, err := decodeSummary(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return records, nil
}

// StatusError reports a non-2xx answer from the summary endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("summary endpoint returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func decodeSummary(r io.Reader) ([]core.SummaryRecord, error) {
	dec := json.NewDecoder(r)

	var records []core.SummaryRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("body must contain a single JSON array")
	}
	if records == nil {
		// null body is treated as "no days yet"
		records = []core.SummaryRecord{}
	}

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (id=%q): %w", i, r.ID, err)
		}
	}
	return records, nil
}
