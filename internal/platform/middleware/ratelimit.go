package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns the default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
	}
}

// bucket is a token bucket refilled lazily on access.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time
	lastSeen   time.Time
}

func newBucket(rate float64, burst int) *bucket {
	now := time.Now()
	return &bucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: now,
		lastSeen:   now,
	}
}

func (b *bucket) take() (ok bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/b.refillRate) + 1
}

// limiter holds one bucket per remote address and sweeps idle entries so
// the map does not grow without bound.
type limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	cfg     RateLimitConfig
	swept   time.Time
}

const bucketIdleTTL = 10 * time.Minute

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		buckets: make(map[string]*bucket),
		cfg:     cfg,
		swept:   time.Now(),
	}
}

func (l *limiter) get(key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.swept) > bucketIdleTTL {
		for k, b := range l.buckets {
			b.mu.Lock()
			idle := time.Since(b.lastSeen) > bucketIdleTTL
			b.mu.Unlock()
			if idle {
				delete(l.buckets, k)
			}
		}
		l.swept = time.Now()
	}

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(l.cfg.RequestsPerSecond, l.cfg.BurstSize)
		l.buckets[key] = b
	}
	return b
}

// RateLimit returns middleware that limits requests per remote IP using a
// token bucket. Rejected requests get a 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	lim := newLimiter(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, retryAfter := lim.get(c.RealIP()).take()
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
