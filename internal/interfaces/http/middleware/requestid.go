package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/TrajMap/internal/application/mapview"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// PropagateRequestID echoes chi's request id to the client and hands it to
// the map service, which forwards it on refresh events and snapshots.
// It must run after chimw.RequestID.
func PropagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimw.GetReqID(r.Context())
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(mapview.ContextWithRequestID(r.Context(), id)))
	})
}

//Personal.AI order the ending
