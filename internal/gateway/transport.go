package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-dashboard/internal/domain"
	"github.com/naka-gawa/github-dashboard/internal/observability"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"

	defaultMaxAttempts    = 3
	defaultBaseDelay      = time.Second
	defaultRateLimitDelay = time.Minute
)

// Requester issues a single authenticated GET and returns the JSON body.
type Requester interface {
	Request(ctx context.Context, path string) (json.RawMessage, error)
}

// Client is the transport layer: it attaches headers, paces requests,
// classifies failures and retries what can be retried.
type Client struct {
	rest    *github.Client
	limiter *rate.Limiter
	logger  *log.Logger

	maxAttempts    int
	baseDelay      time.Duration
	rateLimitDelay time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at a different API host (GitHub Enterprise,
// or a test server).
func WithBaseURL(rawURL string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(rawURL, "/") {
			rawURL += "/"
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("failed to parse base URL: %w", err)
		}
		c.rest.BaseURL = u
		return nil
	}
}

// WithRequestsPerSecond paces outgoing requests with a token bucket.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) error {
		if rps <= 0 {
			return fmt.Errorf("requests per second must be positive, got %v", rps)
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		return nil
	}
}

// WithRetryPolicy overrides the attempt bound and the first backoff delay.
func WithRetryPolicy(maxAttempts int, baseDelay, rateLimitDelay time.Duration) Option {
	return func(c *Client) error {
		if maxAttempts < 1 {
			return fmt.Errorf("max attempts must be at least 1, got %d", maxAttempts)
		}
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
		c.rateLimitDelay = rateLimitDelay
		return nil
	}
}

// WithClock replaces time.Now and the sleeping function.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) error {
		c.now = now
		c.sleep = sleep
		return nil
	}
}

// NewHTTPClient builds the authenticated HTTP client: the bearer token is
// attached by oauth2 and secondary rate limits are absorbed by the waiter.
func NewHTTPClient(token string) (*http.Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}, nil
}

// NewClient wraps httpClient in a retrying transport.
func NewClient(httpClient *http.Client, logger *log.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		rest:           github.NewClient(httpClient),
		limiter:        rate.NewLimiter(rate.Inf, 1),
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		baseDelay:      defaultBaseDelay,
		rateLimitDelay: defaultRateLimitDelay,
		now:            time.Now,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Request performs a GET against path (relative to the base URL, or
// absolute). Rate limiting waits until the advertised reset; transient
// failures back off exponentially. Both share the attempt bound. Auth and
// request errors return immediately.
func (c *Client) Request(ctx context.Context, path string) (json.RawMessage, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.do(ctx, path)
		if err == nil {
			observability.RequestsTotal.WithLabelValues("ok").Inc()
			return body, nil
		}
		lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var authErr *domain.AuthError
		var reqErr *domain.RequestError
		var rlErr *domain.RateLimitError
		switch {
		case errors.As(err, &authErr):
			observability.RequestsTotal.WithLabelValues("auth").Inc()
			return nil, err
		case errors.As(err, &reqErr):
			observability.RequestsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		case errors.As(err, &rlErr):
			observability.RequestsTotal.WithLabelValues("rate_limited").Inc()
		default:
			observability.RequestsTotal.WithLabelValues("transient").Inc()
		}

		if attempt == c.maxAttempts {
			break
		}

		var wait time.Duration
		if rlErr != nil {
			wait = rateLimitWait(rlErr, c.now(), c.rateLimitDelay)
			observability.RetriesTotal.WithLabelValues("rate_limit").Inc()
			observability.RateLimitWaitSeconds.Observe(wait.Seconds())
			c.logger.Printf("  Rate limited on %s, waiting %s before retrying...", path, wait)
		} else {
			wait = delay
			delay *= 2
			observability.RetriesTotal.WithLabelValues("transient").Inc()
			c.logger.Printf("  Request to %s failed (attempt %d/%d): %v; retrying in %s", path, attempt, c.maxAttempts, err, wait)
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to request %s after %d attempts: %w", path, c.maxAttempts, lastErr)
}

// VerifyToken makes one cheap authenticated call and reports whether the
// credential was accepted. It does not retry.
func (c *Client) VerifyToken(ctx context.Context) bool {
	if _, err := c.do(ctx, "user"); err != nil {
		c.logger.Printf("Token verification failed: %v", err)
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, path string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := c.rest.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, &domain.RequestError{Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	var body json.RawMessage
	if _, err := c.rest.Do(ctx, req, &body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, classify(err)
	}
	return body, nil
}

// classify maps go-github errors onto the domain error taxonomy.
func classify(err error) error {
	var rle *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	var er *github.ErrorResponse

	switch {
	case errors.As(err, &rle):
		return &domain.RateLimitError{Reset: rle.Rate.Reset.Time, Err: err}
	case errors.As(err, &abuse):
		var retryAfter time.Duration
		if abuse.RetryAfter != nil {
			retryAfter = *abuse.RetryAfter
		}
		return &domain.RateLimitError{RetryAfter: retryAfter, Err: err}
	case errors.As(err, &er):
		status := 0
		if er.Response != nil {
			status = er.Response.StatusCode
		}
		switch {
		case status == http.StatusUnauthorized:
			return &domain.AuthError{StatusCode: status, Err: err}
		case status == http.StatusTooManyRequests:
			return &domain.RateLimitError{Reset: resetFromHeader(er.Response), Err: err}
		case status >= http.StatusInternalServerError:
			return &domain.TransientError{StatusCode: status, Err: err}
		default:
			return &domain.RequestError{StatusCode: status, Err: err}
		}
	default:
		return &domain.TransientError{Err: err}
	}
}

func resetFromHeader(resp *http.Response) time.Time {
	if resp == nil {
		return time.Time{}
	}
	epoch, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil || epoch <= 0 {
		return time.Time{}
	}
	return time.Unix(epoch, 0)
}

// rateLimitWait is reset-now when the server advertised a reset in the
// future, the server's Retry-After when given, and fallback otherwise.
// It is never negative.
func rateLimitWait(err *domain.RateLimitError, now time.Time, fallback time.Duration) time.Duration {
	if err.RetryAfter > 0 {
		return err.RetryAfter
	}
	if !err.Reset.IsZero() {
		if d := err.Reset.Sub(now); d > 0 {
			return d
		}
	}
	return max(fallback, 0)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
