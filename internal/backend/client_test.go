package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/turtacn/TrajMap/pkg/errors"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *sleepRecorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	rec := &sleepRecorder{}
	c.sleep = rec.sleep
	return c, rec
}

type observerStub struct {
	mu    sync.Mutex
	calls []string
}

func (o *observerStub) RecordBackendCall(resource, code string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, resource+":"+code)
}

// ---------------------------------------------------------------------------
// Constructor
// ---------------------------------------------------------------------------

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("http://backend:5000/")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:5000", c.BaseURL())
	assert.Equal(t, DefaultPathPrefix, c.pathPrefix)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "trajmap/")
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "backend:5000", "::"} {
		_, err := NewClient(u)
		require.Error(t, err, "url %q", u)
		assert.True(t, apperrors.IsValidation(err), "url %q", u)
	}
}

func TestOptions(t *testing.T) {
	hc := &http.Client{}
	c, err := NewClient("http://x",
		WithHTTPClient(hc),
		WithRetryMax(5),
		WithRetryWait(time.Second, 2*time.Second),
		WithUserAgent("ua"),
		WithPathPrefix("api/"),
	)
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, 5, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 2*time.Second, c.retryWaitMax)
	assert.Equal(t, "ua", c.userAgent)
	assert.Equal(t, "/api", c.pathPrefix)

	c, _ = NewClient("http://x", WithRetryMax(-1), WithRetryWait(time.Second, time.Millisecond), WithUserAgent(""), WithTimeout(time.Minute))
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
	assert.Equal(t, time.Minute, c.httpClient.Timeout)
	assert.NotEmpty(t, c.userAgent)
}

// ---------------------------------------------------------------------------
// Request behaviour
// ---------------------------------------------------------------------------

func TestRequest_Headers(t *testing.T) {
	var gotID, gotUA, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"clusters":[]}`))
	}, WithUserAgent("trajmap-test"))

	_, err := c.Clusters(context.Background())
	require.NoError(t, err)
	assert.Len(t, gotID, 36)
	assert.Equal(t, "trajmap-test", gotUA)
	assert.Equal(t, "/books/clusters", gotPath)
}

func TestRequest_RetriesServerErrors(t *testing.T) {
	var calls int32
	obs := &observerStub{}
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"trajectories":[[{"lat":1,"lng":2}]]}`))
	}, WithObserver(obs), WithRetryWait(10*time.Millisecond, 40*time.Millisecond))

	tr, err := c.Filtered(context.Background())
	require.NoError(t, err)
	require.Len(t, tr, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, rec.waits, 2)
	assert.GreaterOrEqual(t, rec.waits[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, rec.waits[1], 20*time.Millisecond)
	assert.Equal(t, []string{"filtered:ok"}, obs.calls)
}

func TestRequest_GivesUpAfterRetryMax(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}, WithRetryMax(2))

	_, err := c.Partitioned(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBackendStatus))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestRequest_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Clusters(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.True(t, apperrors.IsUpstream(err))
}

func TestRequest_HonoursRetryAfter(t *testing.T) {
	var calls int32
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"clusters":[]}`))
	})

	_, err := c.Clusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.waits)
}

func TestRequest_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithRetryMax(1))
	require.NoError(t, err)
	c.sleep = (&sleepRecorder{}).sleep

	_, err = c.Locations(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBackendUnavailable))
}

func TestRequest_MalformedPayload(t *testing.T) {
	obs := &observerStub{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"clusters": "nope"`))
	}, WithObserver(obs))

	_, err := c.Clusters(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMalformedPayload))
}

func TestRequest_ContextCancelledDuringBackoff(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := c.Clusters(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBackendUnavailable))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, 3*time.Second, parseRetryAfter("3", now))
	assert.Equal(t, maxRetryAfter, parseRetryAfter("3600", now))
	assert.Equal(t, 10*time.Second, parseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-4", now))
}

func TestCalculateBackoff_Capped(t *testing.T) {
	c, _ := NewClient("http://x", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	for attempt := 1; attempt < 10; attempt++ {
		d := c.calculateBackoff(attempt)
		assert.LessOrEqual(t, d, 300*time.Millisecond*5/4)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	}
}

//Personal.AI order the ending
