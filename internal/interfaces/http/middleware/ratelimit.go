package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window request counter held in memory. Keys are
// tenant-scoped where a tenant is known, so one busy tenant cannot starve
// the rest of the API.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	remaining int
	windowEnd time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window. A
// background sweep drops buckets whose window has long expired.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.evictExpired()
	return rl
}

func (rl *RateLimiter) evictExpired() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.After(b.windowEnd.Add(rl.window)) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one request slot for key. It returns false once the key
// has exhausted its window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.After(b.windowEnd) {
		rl.buckets[key] = &bucket{
			remaining: rl.limit - 1,
			windowEnd: now.Add(rl.window),
		}
		return true
	}

	if b.remaining > 0 {
		b.remaining--
		return true
	}
	return false
}

// Remaining reports how many requests key has left in the current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || time.Now().After(b.windowEnd) {
		return rl.limit
	}
	return b.remaining
}

// requestKey scopes rate limiting to the resolved tenant when one is known
// and falls back to the client IP for unauthenticated traffic.
func requestKey(c *gin.Context) string {
	if tenantID := GetTenantID(c); tenantID != "" {
		return tenantID
	}
	if tenantID := c.GetHeader(TenantHeaderKey); tenantID != "" {
		return tenantID + ":" + c.ClientIP()
	}
	return c.ClientIP()
}

// RateLimit limits every request passing through it.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := requestKey(c)
		if !limiter.Allow(key) {
			tooManyRequests(c, limiter, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}

// WriteRateLimit applies a tighter budget to mutating requests. Every
// voucher or invoice write updates the bank projection inside a
// transaction, so the write path gets its own bucket, keyed separately
// from the global limiter. Reads pass through untouched.
func WriteRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := "write:" + requestKey(c)
		if !limiter.Allow(key) {
			tooManyRequests(c, limiter, "WRITE_RATE_LIMIT_EXCEEDED",
				"Too many posting requests. Please try again later.")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}

// RateLimitByKey limits with a caller-supplied key extractor.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFunc(c)) {
			tooManyRequests(c, limiter, "RATE_LIMIT_EXCEEDED",
				"Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context, limiter *RateLimiter, code, message string) {
	c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString("request_id")))
}
