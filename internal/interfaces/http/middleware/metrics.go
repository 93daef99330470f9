package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPRecorder receives one observation per request.  *prometheus.AppMetrics
// satisfies it.
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, d time.Duration)
}

// Metrics records requests by route pattern, so /api/v1/layers/{kind} is one
// series rather than one per kind.  Unrouted requests are recorded as
// "unmatched".
func Metrics(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pattern = p
				}
			}
			rec.RecordHTTPRequest(r.Method, pattern, status, time.Since(start))
		})
	}
}

//Personal.AI order the ending
