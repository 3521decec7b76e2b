package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/docs"
	"github.com/emrealmaoglu/trailium/internal/cache"
	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/logger"
)

const healthCheckTimeout = 2 * time.Second

// Health reports database and Redis reachability
// GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "disabled"}

	if err := database.Ping(ctx); err != nil {
		logger.Log.Warn("Health check: database unreachable", zap.Error(err))
		checks["database"] = "error"
		status = http.StatusServiceUnavailable
	}

	if rc := cache.GetRedisClient(); rc != nil {
		if err := rc.Ping(ctx); err != nil {
			logger.Log.Warn("Health check: redis unreachable", zap.Error(err))
			checks["redis"] = "error"
		} else {
			checks["redis"] = "ok"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "error"
	}
	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "trailium-backend",
		"checks":    checks,
	})
}

// Schema serves the OpenAPI document with host and scheme taken from the request
// GET /api/schema
func (h *Handlers) Schema(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	spec := *docs.SwaggerInfo
	spec.Host = c.Request.Host
	spec.Schemes = []string{scheme}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(spec.ReadDoc()))
}
