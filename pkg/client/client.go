// Package client fetches calendars from the proxy and tracks the state a
// widget renders from.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
)

// DefaultTimeout bounds a single Fetch when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the proxy.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proxy returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("proxy returned HTTP %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is the proxy saying the user does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client calls the calendar proxy
type Client struct {
	proxyURL   *url.URL
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the proxy at proxyURL. Any path the URL carries
// is kept; the username is added as a query parameter.
func New(proxyURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid proxy URL %q: scheme must be http or https", proxyURL)
	}

	c := &Client{
		proxyURL:   u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves the calendar for username
func (c *Client) Fetch(ctx context.Context, username string) (calendar.Result, error) {
	u := *c.proxyURL
	q := u.Query()
	q.Set("username", username)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return calendar.Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return calendar.Result{}, fmt.Errorf("failed to reach proxy: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return calendar.Result{}, fmt.Errorf("failed to read proxy response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		return calendar.Result{}, &APIError{Status: resp.StatusCode, Message: payload.Error}
	}

	var result calendar.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return calendar.Result{}, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return result, nil
}
