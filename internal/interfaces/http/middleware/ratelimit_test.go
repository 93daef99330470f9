package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate float64, burst int) (*TokenBucketLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewTokenBucketLimiter(rate, burst, 0)
	l.now = clock.now
	return l, clock
}

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(1, 2)

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Remaining)
	ok, _ = l.Allow("a")
	assert.True(t, ok)

	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, time.Second, info.RetryAfter)

	clock.advance(time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
}

func TestTokenBucket_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	ok, _ := l.Allow("a")
	require.True(t, ok)
	ok, _ = l.Allow("b")
	assert.True(t, ok)
	assert.Equal(t, 2, l.BucketCount())
}

func TestTokenBucket_CleanupDropsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(1, 1)
	l.cleanupInterval = time.Minute
	l.Allow("a")
	clock.advance(2 * time.Minute)
	l.Allow("b")

	l.cleanup()
	assert.Equal(t, 1, l.BucketCount())
	l.Stop()
	l.Stop()
}

func TestRateLimit_Rejects(t *testing.T) {
	l, _ := newTestLimiter(0.5, 1)
	handler := RateLimit(l, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/traclus", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "1", w1.Header().Get("X-RateLimit-Limit"))

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, "2", w2.Header().Get("Retry-After"))
	assert.Contains(t, w2.Body.String(), "COMMON_007")

	other := httptest.NewRequest(http.MethodPost, "/api/v1/traclus", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, other)
	assert.Equal(t, http.StatusOK, w3.Code)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.9:40000"
	assert.Equal(t, "192.168.1.9", ClientIP(r))
	r.RemoteAddr = "192.168.1.9"
	assert.Equal(t, "192.168.1.9", ClientIP(r))
}

//Personal.AI order the ending
