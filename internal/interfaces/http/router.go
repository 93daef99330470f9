package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/internal/interfaces/http/handlers"
	"github.com/turtacn/TrajMap/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	LayerHandler    *handlers.LayerHandler
	AnalysisHandler *handlers.AnalysisHandler
	HealthHandler   *handlers.HealthHandler

	CORS *middleware.CORSConfig
	// AnalysisLimiter throttles the analysis endpoints when set.
	AnalysisLimiter middleware.RateLimiter
	Metrics         middleware.HTTPRecorder
	// MetricsHandler is served at MetricsPath ("/metrics" when empty).
	MetricsHandler http.Handler
	MetricsPath    string

	Logger logging.Logger
}

// NewRouter builds the chi route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.PropagateRequestID)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerLayerRoutes(api, cfg.LayerHandler)
		registerAnalysisRoutes(api, cfg.AnalysisHandler, cfg.AnalysisLimiter)
	})

	return r
}

func registerLayerRoutes(r chi.Router, h *handlers.LayerHandler) {
	if h == nil {
		return
	}
	r.Route("/layers", func(lr chi.Router) {
		lr.Get("/", h.List)
		lr.Get("/{kind}", h.Get)
		lr.Post("/{kind}/export", h.Export)
	})
	r.Get("/locations", h.Locations)
	r.Get("/advanced", h.Advanced)
	r.Get("/palette", h.Palette)
}

func registerAnalysisRoutes(r chi.Router, h *handlers.AnalysisHandler, limiter middleware.RateLimiter) {
	if h == nil {
		return
	}
	r.Group(func(ar chi.Router) {
		if limiter != nil {
			ar.Use(middleware.RateLimit(limiter, nil))
		}
		ar.Post("/traclus", h.Traclus)
		ar.Post("/annealing", h.Annealing)
	})
}

//Personal.AI order the ending
