package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/turtacn/TrajMap/pkg/errors"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

// RateLimitInfo is the caller's bucket state after a decision.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	// RetryAfter is how long until one more token is available.
	RetryAfter time.Duration
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter keeps one bucket per key.  Buckets idle for longer than
// the cleanup interval are dropped.
type TokenBucketLimiter struct {
	rate  float64
	burst int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*tokenBucket

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewTokenBucketLimiter allows rate requests per second with bursts of burst.
// A positive cleanupInterval starts a janitor goroutine; call Stop to end it.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &TokenBucketLimiter{
		rate:            rate,
		burst:           burst,
		now:             time.Now,
		buckets:         make(map[string]*tokenBucket),
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

func (l *TokenBucketLimiter) bucket(key string, now time.Time) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
		l.buckets[key] = b
	}
	return b
}

func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()
	b := l.bucket(key, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(float64(l.burst), b.tokens+now.Sub(b.lastRefill).Seconds()*l.rate)
	b.lastRefill = now

	info := RateLimitInfo{Limit: l.burst}
	if b.tokens >= 1 {
		b.tokens--
		info.Remaining = int(b.tokens)
		return true, info
	}
	if l.rate > 0 {
		info.RetryAfter = time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
	}
	return false, info
}

func (l *TokenBucketLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *TokenBucketLimiter) cleanup() {
	threshold := l.now().Add(-l.cleanupInterval)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		if b.lastRefill.Before(threshold) {
			delete(l.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop ends the janitor goroutine.
func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// BucketCount returns the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// ClientIP keys requests by remote host.  Behind a proxy it relies on chi's
// RealIP middleware having rewritten RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects callers whose bucket is empty with 429 and Retry-After.
// keyFunc defaults to ClientIP.
func RateLimit(limiter RateLimiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := limiter.Allow(keyFunc(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			secs := int(math.Ceil(info.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": "analysis rate limit exceeded, retry later",
			})
		})
	}
}

//Personal.AI order the ending
