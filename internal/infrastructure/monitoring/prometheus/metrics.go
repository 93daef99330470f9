package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric TrajMap records.  All Record* methods are safe
// on a nil receiver so callers with metrics disabled need no guards.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	LayersRenderedTotal CounterVec
	RenderDuration      HistogramVec
	ColoursGenerated    CounterVec

	BackendRequestDuration HistogramVec
	BackendErrorsTotal     CounterVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	SnapshotsExportedTotal CounterVec
	RefreshEventsTotal     CounterVec
	RefreshEventsPublished CounterVec

	HealthCheckStatus GaugeVec
}

// Buckets.
var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRenderDurationBuckets  = []float64{.001, .005, .01, .05, .1, .5, 1, 2.5}
	DefaultBackendDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
)

// NewAppMetrics registers the TrajMap metric set on collector.
func NewAppMetrics(c MetricsCollector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:   c.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),

		LayersRenderedTotal: c.RegisterCounter("layers_rendered_total", "Layers rendered", "kind", "format"),
		RenderDuration:      c.RegisterHistogram("render_duration_seconds", "Layer encode duration", DefaultRenderDurationBuckets, "format"),
		ColoursGenerated:    c.RegisterCounter("colours_generated_total", "Colours drawn from sequencers", "kind"),

		BackendRequestDuration: c.RegisterHistogram("backend_request_duration_seconds", "Clustering backend request duration", DefaultBackendDurationBuckets, "resource"),
		BackendErrorsTotal:     c.RegisterCounter("backend_errors_total", "Clustering backend failures", "resource", "code"),

		CacheHitsTotal:   c.RegisterCounter("cache_hits_total", "Layer payload cache hits", "kind"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total", "Layer payload cache misses", "kind"),

		SnapshotsExportedTotal: c.RegisterCounter("snapshots_exported_total", "Snapshots written to object storage", "kind", "format"),
		RefreshEventsTotal:     c.RegisterCounter("refresh_events_processed_total", "layer.refresh events processed", "kind", "status"),
		RefreshEventsPublished: c.RegisterCounter("refresh_events_published_total", "layer.refresh events published", "kind"),

		HealthCheckStatus: c.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component"),
	}
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordRender records one encoded layer and the colours its sequencer drew.
func (m *AppMetrics) RecordRender(kind, format string, colours int, d time.Duration) {
	if m == nil {
		return
	}
	m.LayersRenderedTotal.WithLabelValues(kind, format).Inc()
	m.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	if colours > 0 {
		m.ColoursGenerated.WithLabelValues(kind).Add(float64(colours))
	}
}

// RecordBackendCall records a call to the clustering backend; code is empty on
// success.
func (m *AppMetrics) RecordBackendCall(resource, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequestDuration.WithLabelValues(resource).Observe(d.Seconds())
	if code != "" {
		m.BackendErrorsTotal.WithLabelValues(resource, code).Inc()
	}
}

// RecordCacheAccess records a payload cache hit or miss.
func (m *AppMetrics) RecordCacheAccess(kind string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(kind).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(kind).Inc()
}

// RecordSnapshot records an exported snapshot.
func (m *AppMetrics) RecordSnapshot(kind, format string) {
	if m == nil {
		return
	}
	m.SnapshotsExportedTotal.WithLabelValues(kind, format).Inc()
}

// RecordRefreshPublished records an emitted refresh event.
func (m *AppMetrics) RecordRefreshPublished(kind string) {
	if m == nil {
		return
	}
	m.RefreshEventsPublished.WithLabelValues(kind).Inc()
}

// RecordRefreshProcessed records a refresh event handled by the worker.
func (m *AppMetrics) RecordRefreshProcessed(kind string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RefreshEventsTotal.WithLabelValues(kind, status).Inc()
}

// SetHealth sets a component's health gauge.
func (m *AppMetrics) SetHealth(component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
