package backend

import (
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d, Transport: c.httpClient.Transport}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("backend")
		}
	}
}

// WithObserver records every call, typically into Prometheus.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithRetryMax sets the maximum number of retries.  Zero disables retry.
func WithRetryMax(retryMax int) Option {
	return func(c *Client) {
		if retryMax >= 0 {
			c.retryMax = retryMax
		}
	}
}

// WithRetryWait sets the minimum and maximum retry waits.  max is ignored
// when it is below min.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 {
			c.retryWaitMin = min
			if max >= min {
				c.retryWaitMax = max
			}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithPathPrefix sets the mount point of the service's API.  "" mounts at the
// root.
func WithPathPrefix(prefix string) Option {
	return func(c *Client) {
		prefix = strings.TrimSuffix(prefix, "/")
		if prefix != "" && !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		c.pathPrefix = prefix
	}
}

//Personal.AI order the ending
