// Package backend is the HTTP client for the trajectory clustering service.
// The service owns TRACLUS and the simulated-annealing epsilon search; this
// package only fetches their results.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

const (
	Version = "1.0.0"

	// DefaultPathPrefix is where the service mounts its blueprint.
	DefaultPathPrefix = "/books"

	maxRetryAfter = 30 * time.Second
	maxErrorBody  = 512
)

// Observer receives one call per backend request.  AppMetrics satisfies it.
type Observer interface {
	RecordBackendCall(resource, code string, d time.Duration)
}

// HTTPError is the cause attached to ErrCodeBackendStatus errors.
type HTTPError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend: HTTP %d [request_id=%s]: %s", e.StatusCode, e.RequestID, e.Body)
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// Client talks to the clustering service.  It is safe for concurrent use.
type Client struct {
	baseURL      string
	pathPrefix   string
	httpClient   *http.Client
	userAgent    string
	logger       logging.Logger
	observer     Observer
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewClient validates baseURL and applies opts.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "backend base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid backend base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeValidation, "backend base URL scheme must be http or https").WithDetail(baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		pathPrefix:   DefaultPathPrefix,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("trajmap/%s", Version),
		logger:       logging.NewNopLogger(),
		retryMax:     3,
		retryWaitMin: 200 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised service root.
func (c *Client) BaseURL() string { return c.baseURL }

// resolve joins an API path to the base URL and prefix.
func (c *Client) resolve(path string, query url.Values) string {
	full := c.baseURL + c.pathPrefix + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// get performs a GET with retry and decodes a 2xx JSON body into result.
// resource names the call in logs and metrics.
func (c *Client) get(ctx context.Context, resource, fullURL string, result interface{}) error {
	return c.call(ctx, resource, fullURL, result, true)
}

// trigger is get for requests that start work on the backend.  Once a request
// may have reached the service it is not repeated; only refused connections
// and 429 responses are retried.
func (c *Client) trigger(ctx context.Context, resource, fullURL string, result interface{}) error {
	return c.call(ctx, resource, fullURL, result, false)
}

func (c *Client) call(ctx context.Context, resource, fullURL string, result interface{}, idempotent bool) error {
	start := time.Now()
	body, err := c.do(ctx, resource, fullURL, idempotent)
	code := "ok"
	if err != nil {
		code = string(errors.GetCode(err))
	}
	if c.observer != nil {
		c.observer.RecordBackendCall(resource, code, time.Since(start))
	}
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return errors.Wrap(err, errors.ErrCodeMalformedPayload, "failed to decode backend response").WithDetail(resource)
	}
	return nil
}

func (c *Client) do(ctx context.Context, resource, fullURL string, idempotent bool) ([]byte, error) {
	var lastErr error
	var wait time.Duration

	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			if wait == 0 {
				wait = c.calculateBackoff(attempt)
			}
			c.logger.Debug("retrying backend request",
				logging.String("resource", resource),
				logging.Int("attempt", attempt),
				logging.Duration("wait", wait))
			if err := c.sleep(ctx, wait); err != nil {
				return nil, c.contextError(err, resource)
			}
			wait = 0
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create backend request").WithDetail(fullURL)
		}
		requestID := uuid.New().String()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.contextError(ctx.Err(), resource)
			}
			c.logger.Warn("backend request failed",
				logging.String("resource", resource),
				logging.RequestID(requestID),
				logging.Err(err))
			lastErr = errors.Wrap(err, errors.ErrCodeBackendUnavailable, "backend unreachable").WithDetail(resource)
			if !idempotent && !isDialError(err) {
				return nil, lastErr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.logger.Debug("backend response",
			logging.String("resource", resource),
			logging.Int("status", resp.StatusCode),
			logging.Duration("elapsed", time.Since(start)),
			logging.RequestID(requestID))
		if readErr != nil {
			lastErr = errors.Wrap(readErr, errors.ErrCodeBackendUnavailable, "failed to read backend response").WithDetail(resource)
			if !idempotent {
				return nil, lastErr
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(body)), RequestID: requestID}
		lastErr = errors.Wrap(httpErr, errors.ErrCodeBackendStatus, "backend returned an error").
			WithDetail(fmt.Sprintf("%s: HTTP %d", resource, resp.StatusCode))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		case resp.StatusCode >= 500 && idempotent:
		default:
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// isDialError reports a connection that was never established.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) contextError(err error, resource string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeTimeout, "backend request timed out").WithDetail(resource)
	}
	return errors.Wrap(err, errors.ErrCodeBackendUnavailable, "backend request cancelled").WithDetail(resource)
}

// calculateBackoff is exponential with up to 25% jitter, capped at
// retryWaitMax.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax || backoff <= 0 {
		backoff = c.retryWaitMax
	}
	if q := int64(backoff / 4); q > 0 {
		backoff += time.Duration(rand.Int63n(q))
	}
	return backoff
}

// parseRetryAfter accepts delta-seconds or an HTTP date.  Zero means "use the
// normal backoff".
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = t.Sub(now)
	}
	if d <= 0 {
		return 0
	}
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

//Personal.AI order the ending
