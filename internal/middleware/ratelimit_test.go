package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrealmaoglu/trailium/internal/cache"
	"github.com/emrealmaoglu/trailium/internal/config"
	"github.com/emrealmaoglu/trailium/internal/models"
	"github.com/emrealmaoglu/trailium/internal/util"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	config := RateLimitConfig{
		Limit:  3,
		Window: time.Second,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}

	router := gin.New()
	router.Use(NewRateLimiter(config))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "4th request should be rate limited")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	// Wait for the bucket to refill
	time.Sleep(time.Second + 100*time.Millisecond)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code, "Request after window should succeed")
}

func TestRateLimiterDifferentClients(t *testing.T) {
	gin.SetMode(gin.TestMode)

	config := RateLimitConfig{
		Limit:  2,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.GetHeader("X-Client-ID")
		},
	}

	router := gin.New()
	router.Use(NewRateLimiter(config))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	do := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Client-ID", client)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("client-a"))
	assert.Equal(t, http.StatusOK, do("client-a"))
	assert.Equal(t, http.StatusTooManyRequests, do("client-a"), "Client A should be rate limited")
	assert.Equal(t, http.StatusOK, do("client-b"), "Client B should not be rate limited")
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	assert.Equal(t, 100, cfg.Limit)
	assert.Equal(t, time.Hour, cfg.Window)
	assert.NotNil(t, cfg.KeyFunc)
}

func TestResolveScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rates := config.RateLimitConfig{Enabled: true, Anon: 1, User: 2, Premium: 3}

	tests := []struct {
		name      string
		user      *models.User
		wantScope string
		wantKey   string
		wantLimit int
	}{
		{"anonymous by ip", nil, ScopeAnon, "192.0.2.1", 1},
		{"regular user by id", &models.User{ID: 7}, ScopeUser, "7", 2},
		{"premium user", &models.User{ID: 8, IsPremium: true}, ScopePremium, "8", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				util.SetUser(c, tt.user)
			}

			scope, key, limit := ResolveScope(c, rates)
			assert.Equal(t, tt.wantScope, scope)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestScopedRateLimitMiddleware_PremiumGetsHigherAllowance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache.SetRedisClient(nil)

	rates := config.RateLimitConfig{Enabled: true, Anon: 1, User: 1, Premium: 2}
	premium := &models.User{ID: 42, IsPremium: true}
	regular := &models.User{ID: 43}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		switch c.GetHeader("X-User") {
		case "premium":
			util.SetUser(c, premium)
		case "regular":
			util.SetUser(c, regular)
		}
		c.Next()
	})
	router.Use(ScopedRateLimitMiddleware(rates))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(who string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-User", who)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do("regular"))
	assert.Equal(t, http.StatusTooManyRequests, do("regular"))

	assert.Equal(t, http.StatusNoContent, do("premium"))
	assert.Equal(t, http.StatusNoContent, do("premium"))
	assert.Equal(t, http.StatusTooManyRequests, do("premium"))

	assert.Equal(t, http.StatusNoContent, do("anon"))
	assert.Equal(t, http.StatusTooManyRequests, do("anon"))
}

func TestScopedRateLimitMiddleware_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ScopedRateLimitMiddleware(config.RateLimitConfig{Enabled: false, Anon: 1}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "rate_limit:user:12", RateLimitKey(ScopeUser, "12"))
}
