// middleware/ratelimit.go - Per-IP token bucket rate limiting
package middleware

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.refillRate
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

type rateLimiter struct {
	buckets    map[string]*tokenBucket
	mu         sync.Mutex
	maxTokens  float64
	refillRate float64
}

func newRateLimiter(maxRequests, windowSeconds int) *rateLimiter {
	if windowSeconds <= 0 {
		windowSeconds = 900
	}
	return &rateLimiter{
		buckets:    make(map[string]*tokenBucket),
		maxTokens:  float64(maxRequests),
		refillRate: float64(maxRequests) / float64(windowSeconds),
	}
}

func (rl *rateLimiter) bucket(key string) *tokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if tb, ok := rl.buckets[key]; ok {
		return tb
	}
	tb := &tokenBucket{
		tokens:     rl.maxTokens,
		maxTokens:  rl.maxTokens,
		refillRate: rl.refillRate,
		lastRefill: time.Now(),
	}
	rl.buckets[key] = tb
	return tb
}

var (
	generalLimiter *rateLimiter
	authLimiter    *rateLimiter
)

func init() {
	generalLimiter = newRateLimiter(
		getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		getEnvInt("RATE_LIMIT_WINDOW_MS", 900000)/1000,
	)
	authLimiter = newRateLimiter(
		getEnvInt("AUTH_RATE_LIMIT_MAX", 5),
		getEnvInt("AUTH_RATE_LIMIT_WINDOW_MS", 300000)/1000,
	)
}

// RateLimitMiddleware limits all API traffic per client IP.
func RateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !generalLimiter.bucket(c.IP()).allow() {
			return c.Status(429).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}

// AuthRateLimitMiddleware applies the stricter login/register budget.
func AuthRateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !authLimiter.bucket(c.IP()).allow() {
			return c.Status(429).JSON(fiber.Map{
				"success": false,
				"error":   "Too many authentication attempts, please try again later",
			})
		}
		return c.Next()
	}
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultValue
}
