// Package githubapi talks to the GitHub REST and GraphQL APIs and classifies
// every call into a remote.Outcome.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/go-github/v62/github"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/domain/remote"
)

const (
	// DefaultBaseURL is the public GitHub API root.
	DefaultBaseURL = "https://api.github.com/"

	// UserAgent identifies the proxy to GitHub.
	UserAgent = "GitHub-Calendar-Widget/1.0"
)

// placeholderTokens are the sample values shipped in example configuration.
var placeholderTokens = map[string]bool{
	"ghp_your_token_here":        true,
	"ghp_your_actual_token_here": true,
}

// UsableToken reports whether token should be sent to GitHub.
func UsableToken(token string) bool {
	token = strings.TrimSpace(token)
	return token != "" && !placeholderTokens[token]
}

// Metrics records classified calls.
type Metrics interface {
	RecordRemoteCall(endpoint, outcome string, duration time.Duration)
}

// RetryPolicy controls re-attempts of a failed call. Only network failures
// and 5xx responses are retried.
type RetryPolicy struct {
	Enabled         bool
	MaxRetries      int
	InitialInterval time.Duration
}

// BreakerConfig holds configuration for the client's circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	Retry      RetryPolicy
	Breaker    BreakerConfig
	HTTPClient *http.Client
	Metrics    Metrics
}

// Request describes one API call. Name is a low-cardinality label used for
// logs, metrics and spans; it never contains user input.
type Request struct {
	Name   string
	Method string
	Path   string
	Body   interface{}
}

// Client performs GitHub API calls with a per-call timeout, optional
// retries and a circuit breaker. It is safe for concurrent use.
type Client struct {
	gh            *github.Client
	authenticated bool
	timeout       time.Duration
	retry         RetryPolicy
	breaker       *gobreaker.CircuitBreaker
	metrics       Metrics
	tracer        trace.Tracer
	logger        *zap.Logger
}

// NewClient creates a GitHub API client.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Breaker == (BreakerConfig{}) {
		opts.Breaker = DefaultBreakerConfig()
	}
	if opts.Retry.InitialInterval <= 0 {
		opts.Retry.InitialInterval = 500 * time.Millisecond
	}

	gh := github.NewClient(opts.HTTPClient)
	authenticated := UsableToken(opts.Token)
	if authenticated {
		gh = gh.WithAuthToken(strings.TrimSpace(opts.Token))
	}
	gh.BaseURL = base
	gh.UserAgent = UserAgent

	c := &Client{
		gh:            gh,
		authenticated: authenticated,
		timeout:       opts.Timeout,
		retry:         opts.Retry,
		metrics:       opts.Metrics,
		tracer:        otel.Tracer("github-light-calendar/githubapi"),
		logger:        logger,
	}
	c.breaker = newBreaker(opts.Breaker, logger)

	return c, nil
}

// errTransport marks a call as failed for the circuit breaker. Rate limits
// and missing users are answers, not failures, and leave the breaker alone.
var errTransport = errors.New("transport error")

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "github",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// Authenticated reports whether calls carry an API token.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// Do performs req and decodes a successful JSON response into out.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) remote.Outcome {
	ctx, span := c.tracer.Start(ctx, "github."+req.Name,
		trace.WithAttributes(attribute.String("http.method", req.Method)),
	)
	defer span.End()

	start := time.Now()
	outcome := c.execute(ctx, req, out)
	duration := time.Since(start)

	span.SetAttributes(
		attribute.String("github.outcome", outcome.Kind.String()),
		attribute.Int("http.status_code", outcome.Status),
	)
	if c.metrics != nil {
		c.metrics.RecordRemoteCall(req.Name, outcome.Kind.String(), duration)
	}
	if !outcome.OK() {
		c.logger.Warn("GitHub API call failed",
			zap.String("request", req.Name),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", outcome.Status),
			zap.String("outcome", outcome.Kind.String()),
			zap.String("detail", outcome.Detail),
			zap.Duration("duration", duration),
		)
	}

	return outcome
}

func (c *Client) execute(ctx context.Context, req Request, out interface{}) remote.Outcome {
	if !c.retry.Enabled || c.retry.MaxRetries <= 0 {
		return c.attempt(ctx, req, out)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval

	last := remote.Failure(0, "not attempted")
	_, _ = backoff.Retry(ctx, func() (struct{}, error) {
		last = c.attempt(ctx, req, out)
		switch {
		case last.OK():
			return struct{}{}, nil
		case last.Retryable():
			return struct{}{}, errors.New(last.String())
		default:
			return struct{}{}, backoff.Permanent(errors.New(last.String()))
		}
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.retry.MaxRetries+1)),
	)

	return last
}

func (c *Client) attempt(ctx context.Context, req Request, out interface{}) remote.Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var outcome remote.Outcome
	_, err := c.breaker.Execute(func() (interface{}, error) {
		outcome = c.send(ctx, req, out)
		if outcome.Kind == remote.TransportError {
			return nil, errTransport
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return remote.Failure(0, "circuit open")
	}

	return outcome
}

func (c *Client) send(ctx context.Context, req Request, out interface{}) remote.Outcome {
	httpReq, err := c.gh.NewRequest(req.Method, req.Path, req.Body)
	if err != nil {
		return remote.Failure(0, fmt.Sprintf("build request: %v", err))
	}

	resp, err := c.gh.Do(ctx, httpReq, out)
	return classify(resp, err)
}

// classify maps a go-github response and error onto an outcome.
func classify(resp *github.Response, err error) remote.Outcome {
	if err == nil {
		status := http.StatusOK
		if resp != nil {
			status = resp.StatusCode
		}
		return remote.Success(status)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return remote.Outcome{Kind: remote.RateLimited, Status: statusOf(rateErr.Response), Detail: rateErr.Message}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return remote.Outcome{Kind: remote.RateLimited, Status: statusOf(abuseErr.Response), Detail: abuseErr.Message}
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return remote.FromStatus(respErr.Response.StatusCode, respErr.Message)
	}

	// A 2xx response whose body failed to decode.
	if resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return remote.Failure(resp.StatusCode, fmt.Sprintf("decode response: %v", err))
	}
	return remote.Failure(0, err.Error())
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return http.StatusForbidden
	}
	return resp.StatusCode
}
