package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/cache"
	"github.com/emrealmaoglu/trailium/internal/config"
	apierrors "github.com/emrealmaoglu/trailium/internal/errors"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// Throttle scopes.
const (
	ScopeAnon    = "anon"
	ScopeUser    = "user"
	ScopePremium = "premium"
)

// RateWindow is the window the configured per-scope rates apply to.
const RateWindow = time.Hour

// RateLimitConfig holds configuration for a single-scope limiter
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc identifies the client. Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns the anonymous throttle rate keyed by IP
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   config.DefaultRateAnon,
		Window:  RateWindow,
		KeyFunc: func(c *gin.Context) string { return c.ClientIP() },
	}
}

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request is allowed based on token availability
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// GetRetryAfter returns seconds to wait before next request
func (tb *TokenBucket) GetRetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens < 1 {
		timeToToken := (1 - tb.tokens) / tb.refillRate
		return int(math.Ceil(timeToToken))
	}
	return 0
}

// full reports whether the bucket refilled completely, meaning the client has
// been idle for at least a whole window.
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(now)
	return tb.tokens >= tb.maxTokens
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mu      sync.Mutex
}

func newRateLimiter() *RateLimiter {
	rl := &RateLimiter{buckets: make(map[string]*TokenBucket)}
	go rl.cleanupRoutine(time.Minute)
	return rl
}

// Allow takes a token from key's bucket. It returns whether the request may
// proceed and, if not, the seconds until it may retry.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) (bool, int) {
	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(limit) / window.Seconds()
		bucket = NewTokenBucket(float64(limit), refillRate)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	if bucket.Allow() {
		return true, 0
	}
	return false, bucket.GetRetryAfter()
}

// cleanupRoutine drops buckets that have refilled, since a fresh bucket is
// equivalent.
func (rl *RateLimiter) cleanupRoutine(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		rl.mu.Lock()
		for key, bucket := range rl.buckets {
			if bucket.full(now) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// NewRateLimiter creates an in-memory, single-scope rate limiting middleware
func NewRateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	rl := newRateLimiter()

	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(cfg.KeyFunc(c), cfg.Limit, cfg.Window)
		if !allowed {
			rejectThrottled(c, "custom", cfg.Limit, retryAfter)
			return
		}
		c.Next()
	}
}

// ResolveScope picks the throttle scope, key and limit for the request.
// Anonymous clients are keyed by IP, authenticated ones by user id.
func ResolveScope(c *gin.Context, rates config.RateLimitConfig) (scope, key string, limit int) {
	user := util.CurrentUser(c)
	switch {
	case user == nil:
		return ScopeAnon, c.ClientIP(), rates.Anon
	case user.IsPremium:
		return ScopePremium, strconv.FormatUint(uint64(user.ID), 10), rates.Premium
	default:
		return ScopeUser, strconv.FormatUint(uint64(user.ID), 10), rates.User
	}
}

// ScopedRateLimitMiddleware throttles by scope. It uses Redis fixed windows
// when a Redis client is available and falls back to in-memory token buckets.
// It must run after the optional auth middleware so users are resolved.
func ScopedRateLimitMiddleware(rates config.RateLimitConfig) gin.HandlerFunc {
	if !rates.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	memory := newRateLimiter()

	return func(c *gin.Context) {
		scope, key, limit := ResolveScope(c, rates)
		if limit <= 0 {
			c.Next()
			return
		}

		var (
			allowed    bool
			retryAfter int
		)
		if rc := cache.GetRedisClient(); rc != nil {
			var err error
			allowed, retryAfter, err = redisAllow(c.Request.Context(), rc, scope, key, limit, RateWindow)
			if err != nil {
				logger.Log.Warn("Redis rate limiter unavailable, using in-memory buckets", zap.Error(err))
				allowed, retryAfter = memory.Allow(scope+":"+key, limit, RateWindow)
			}
		} else {
			allowed, retryAfter = memory.Allow(scope+":"+key, limit, RateWindow)
		}

		if !allowed {
			rejectThrottled(c, scope, limit, retryAfter)
			return
		}
		c.Next()
	}
}

func rejectThrottled(c *gin.Context, scope string, limit, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	RecordRateLimitExceeded(scope, c.Request.Method)
	logger.Log.Warn("Rate limit exceeded",
		logger.WithIP(c.ClientIP()),
		zap.String("scope", scope),
		zap.Int("limit", limit),
	)

	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", "0")
	util.RespondWithAPIError(c, apierrors.RateLimited(
		fmt.Sprintf("Request was throttled. Expected available in %d seconds.", retryAfter)))
}
