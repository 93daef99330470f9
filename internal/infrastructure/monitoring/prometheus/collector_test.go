package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "trajmap", Subsystem: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNewMetricsCollector_RuntimeCollectors(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "trajmap", EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrape(t, c), "go_goroutines")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("hits_total", "hits", "kind")
	vec.WithLabelValues("clusters").Inc()
	vec.WithLabelValues("clusters").Add(2)

	out := scrape(t, c)
	assert.Contains(t, out, `trajmap_test_hits_total{kind="clusters"} 3`)
}

func TestRegisterTwiceReturnsSameVector(t *testing.T) {
	c := newTestCollector(t)
	a := c.RegisterCounter("dup_total", "dup")
	b := c.RegisterCounter("dup_total", "dup")
	a.WithLabelValues().Inc()
	b.WithLabelValues().Inc()

	n, err := testutil.GatherAndCount(c.Gatherer(), "trajmap_test_dup_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, scrape(t, c), "trajmap_test_dup_total 2")
}

func TestRegisterTypeMismatchFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("mixed", "counter first")
	g := c.RegisterGauge("mixed", "then gauge")
	assert.IsType(t, noopGaugeVec{}, g)
	g.WithLabelValues().Set(5)
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("up", "up", "component")
	g.WithLabelValues("redis").Set(1)
	h := c.RegisterHistogram("latency_seconds", "latency", nil, "resource")
	h.WithLabelValues("clusters").Observe(0.2)

	out := scrape(t, c)
	assert.Contains(t, out, `trajmap_test_up{component="redis"} 1`)
	assert.Contains(t, out, `trajmap_test_latency_seconds_count{resource="clusters"} 1`)
}

func TestNoopCollector(t *testing.T) {
	c := NewNoopCollector()
	c.RegisterCounter("a", "a").WithLabelValues("x").Inc()
	c.RegisterGauge("b", "b").WithLabelValues().Dec()
	c.RegisterHistogram("c", "c", nil).WithLabelValues().Observe(1)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("op_seconds", "op", []float64{1})
	timer := NewTimer(h.WithLabelValues())
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.ObserveDuration(), time.Duration(0))
	assert.Contains(t, scrape(t, c), "trajmap_test_op_seconds_count 1")

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
