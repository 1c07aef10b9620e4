// Package api provides a REST client for the counters API.
// Each exported method maps onto one endpoint and returns the full counter
// list the server answers with.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/h0rv/counters/internal/domain"
	"github.com/muesli/reflow/truncate"
	"github.com/sirupsen/logrus"
)

var (
	// ErrOffline indicates the API host could not be reached before dispatch.
	ErrOffline = errors.New("no internet connection")
	// ErrDecode indicates the response body could not be parsed.
	ErrDecode = errors.New("error parsing data")
	// ErrInvalidBaseURL indicates the configured base URL is unusable.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 512

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

// Client is a counters REST API client.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	reach   Reachability
	timeout time.Duration
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithReachability replaces the connectivity check run before each request.
func WithReachability(r Reachability) Option {
	return func(c *Client) { c.reach = r }
}

// WithTimeout bounds every request. Zero disables the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the API rooted at baseURL (e.g. http://127.0.0.1:3000).
// By default connectivity is checked by dialing the API host.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		timeout: 10 * time.Second,
		log:     logrus.StandardLogger(),
	}
	c.reach = NewDialReachability(u, 2*time.Second)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetCounters lists every counter.
func (c *Client) GetCounters(ctx context.Context) ([]domain.Counter, error) {
	return c.Do(ctx, GetCounters())
}

// CreateCounter creates a counter and returns the updated list.
func (c *Client) CreateCounter(ctx context.Context, title string) ([]domain.Counter, error) {
	return c.Do(ctx, CreateCounter(title))
}

// IncreaseCounter increments a counter and returns the updated list.
func (c *Client) IncreaseCounter(ctx context.Context, id string) ([]domain.Counter, error) {
	return c.Do(ctx, IncreaseCounter(id))
}

// DecreaseCounter decrements a counter and returns the updated list.
func (c *Client) DecreaseCounter(ctx context.Context, id string) ([]domain.Counter, error) {
	return c.Do(ctx, DecreaseCounter(id))
}

// DeleteCounter deletes a counter and returns the updated list.
func (c *Client) DeleteCounter(ctx context.Context, id string) ([]domain.Counter, error) {
	return c.Do(ctx, DeleteCounter(id))
}

// Do executes a route and decodes the counter list in the response.
func (c *Client) Do(ctx context.Context, route Route) ([]domain.Counter, error) {
	if c.reach != nil && !c.reach.Reachable(ctx) {
		return nil, ErrOffline
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, route)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", route.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", route.Name, err)
	}

	c.log.WithFields(logrus.Fields{
		"route":    route.Name,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncateBody(strings.TrimSpace(string(body)), maxErrorBody)}
	}

	return DecodeCounters(body)
}

// newRequest builds the HTTP request for a route.
func (c *Client) newRequest(ctx context.Context, route Route) (*http.Request, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimRight(c.baseURL.Path, "/") + route.Path})

	var body io.Reader
	if route.Body != nil {
		payload, err := sonic.Marshal(route.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", route.Name, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", route.Name, err)
	}
	if route.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// truncateBody cuts s to n cells on a rune boundary.
func truncateBody(s string, n int) string {
	return truncate.StringWithTail(s, uint(n), "…")
}
