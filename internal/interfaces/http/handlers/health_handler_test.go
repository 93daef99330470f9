package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthRecorder struct {
	mu  sync.Mutex
	got map[string]bool
}

func (r *healthRecorder) SetHealth(component string, up bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.got == nil {
		r.got = map[string]bool{}
	}
	r.got[component] = up
}

func okCheck(name string) HealthChecker {
	return CheckFunc{Component: name, Fn: func(context.Context) error { return nil }}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", CheckFunc{Component: "redis", Fn: func(context.Context) error { return assert.AnError }})
	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_Readiness_NoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler("dev").Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestHealthHandler_Readiness_AllHealthy(t *testing.T) {
	rec := &healthRecorder{}
	h := NewHealthHandler("dev", okCheck("redis"), okCheck("minio")).WithReporter(rec)

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, map[string]bool{"redis": true, "minio": true}, rec.got)
}

func TestHealthHandler_Readiness_Degraded(t *testing.T) {
	rec := &healthRecorder{}
	h := NewHealthHandler("dev",
		okCheck("redis"),
		CheckFunc{Component: "backend", Fn: func(context.Context) error { return assert.AnError }},
	).WithReporter(rec)

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["backend"].Status)
	assert.Equal(t, assert.AnError.Error(), resp.Components["backend"].Error)
	assert.False(t, rec.got["backend"])
}

//Personal.AI order the ending
