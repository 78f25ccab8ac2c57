package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	SkipPaths         []string
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig allows a sustained 10 rps with a burst of 20.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
		CleanupInterval:   5 * time.Minute,
	}
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// tokenBucketLimiter is an in-memory per-key token bucket.  Idle buckets are
// dropped on a cleanup interval so the map does not grow unbounded.
type tokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   float64

	lastCleanup     time.Time
	cleanupInterval time.Duration
}

func newTokenBucketLimiter(cfg RateLimitConfig) *tokenBucketLimiter {
	return &tokenBucketLimiter{
		buckets:         make(map[string]*tokenBucket),
		rate:            cfg.RequestsPerSecond,
		burst:           float64(cfg.BurstSize),
		lastCleanup:     time.Now(),
		cleanupInterval: cfg.CleanupInterval,
	}
}

func (l *tokenBucketLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cleanupInterval > 0 && now.Sub(l.lastCleanup) > l.cleanupInterval {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.cleanupInterval {
				delete(l.buckets, k)
			}
		}
		l.lastCleanup = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: l.burst}
		l.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit rejects clients exceeding the configured rate with 429.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := newTokenBucketLimiter(cfg)
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		if !limiter.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", strconv.Itoa(1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
