package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/cache"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/util"
)

// ResponseCacheMiddleware caches successful GET responses in Redis for ttl.
// Only 200 responses are cached. X-Cache: HIT/MISS is added for debugging.
// Cache key is: response:{path}:{query_string}:{user_id}
// Without a Redis client the middleware is a pass-through.
func ResponseCacheMiddleware(cacheName string, ttl time.Duration, perUser bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			c.Next()
			return
		}

		userID := ""
		if perUser {
			if user := util.CurrentUser(c); user != nil {
				userID = strconv.FormatUint(uint64(user.ID), 10)
			}
		}

		cacheKey := generateCacheKey(c.Request.URL.Path, c.Request.URL.RawQuery, userID)
		ctx := c.Request.Context()

		cachedData, err := redisClient.Get(ctx, cacheKey)
		if err == nil {
			RecordCacheHit(cacheName)
			c.Header("X-Cache", "HIT")
			c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(ttl.Seconds())))
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cachedData))
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Debug("Cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		RecordCacheMiss(cacheName)

		writer := &cachedResponseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if writer.Status() != http.StatusOK || writer.body.Len() == 0 {
			return
		}
		if err := redisClient.SetEx(ctx, cacheKey, writer.body.String(), ttl); err != nil {
			logger.Log.Debug("Failed to write response to cache",
				zap.String("key", cacheKey),
				zap.Error(err),
			)
		}
	}
}

// generateCacheKey creates a cache key from request path, query params, and user ID
func generateCacheKey(path, query, userID string) string {
	key := fmt.Sprintf("response:%s", path)

	if query != "" {
		key = fmt.Sprintf("%s:%s", key, query)
	}

	if userID != "" {
		key = fmt.Sprintf("%s:%s", key, userID)
	}

	return key
}

// cachedResponseWriter intercepts response writes to capture the response body
type cachedResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cachedResponseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *cachedResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
