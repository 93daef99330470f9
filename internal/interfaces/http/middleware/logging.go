package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged (health checks and scrapes).
	SkipPaths []string
	// SlowThreshold promotes successful requests to Warn.  Zero disables it.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig skips health checks and the metrics scrape.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 5 * time.Second,
	}
}

// RequestLogging logs one line per request.  5xx responses log at Error, 4xx
// and slow requests at Warn.
func RequestLogging(logger logging.Logger, cfg LoggingConfig) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path += "?" + r.URL.RawQuery
			}
			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", path),
				logging.Int("status", status),
				logging.Duration("duration", elapsed),
				logging.Int("bytes", ww.BytesWritten()),
				logging.String("remote_addr", r.RemoteAddr),
				logging.RequestID(chimw.GetReqID(r.Context())),
			}
			if ua := r.UserAgent(); ua != "" {
				fields = append(fields, logging.String("user_agent", ua))
			}

			switch {
			case status >= 500:
				logger.Error("HTTP request completed with server error", fields...)
			case status >= 400:
				logger.Warn("HTTP request completed with client error", fields...)
			case cfg.SlowThreshold > 0 && elapsed >= cfg.SlowThreshold:
				logger.Warn("HTTP request completed (slow)", fields...)
			default:
				logger.Info("HTTP request completed", fields...)
			}
		})
	}
}

//Personal.AI order the ending
