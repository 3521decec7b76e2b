package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/auth"
	"github.com/emrealmaoglu/trailium/internal/cache"
	"github.com/emrealmaoglu/trailium/internal/config"
	"github.com/emrealmaoglu/trailium/internal/database"
	"github.com/emrealmaoglu/trailium/internal/handlers"
	"github.com/emrealmaoglu/trailium/internal/logger"
	"github.com/emrealmaoglu/trailium/internal/middleware"
	"github.com/emrealmaoglu/trailium/internal/storage"
	"github.com/emrealmaoglu/trailium/internal/telemetry"
	"github.com/emrealmaoglu/trailium/internal/validation"
)

// @title                       Trailium API
// @version                     1.0
// @description                 Social and todo backend: profiles, posts, albums, follows and todo lists.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not up yet.
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== Trailium server starting ===",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.Server.Address()),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Tracing first so the GORM plugin and storage clients pick up the provider
	tp, err := telemetry.InitTracer(telemetry.ConfigFrom(cfg))
	if err != nil {
		logger.Log.Warn("Tracing disabled: failed to initialize tracer", zap.Error(err))
	} else if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Log.Warn("Tracer shutdown failed", zap.Error(err))
			}
		}()
		logger.Log.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.Telemetry.Endpoint))
	}

	if err := database.Initialize(cfg.Database, cfg.IsDevelopment()); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if tp != nil {
		if err := database.DB.Use(telemetry.GORMTracingPlugin()); err != nil {
			logger.Log.Warn("Failed to register GORM tracing plugin", zap.Error(err))
		}
	}

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// Redis is optional: rate limiting and the response cache fall back to memory
	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			defer rc.Close()
		}
	}

	photoStorage, storageErr := storage.New(context.Background(), cfg.Storage)
	if storageErr != nil {
		logger.Log.Warn("Photo storage unavailable, uploads will fail",
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(storageErr))
	}

	// TRAILIUM_REQUIRE_<NAME>=true turns a degraded dependency into a start-up failure
	serviceValidator := validation.NewServiceValidator(serviceChecks(photoStorage, storageErr))
	if err := serviceValidator.ValidateServices(context.Background()); err != nil {
		logger.FatalWithFields("Required service unavailable", err)
	}

	authService := auth.NewService([]byte(cfg.Auth.JWTSecret), auth.TokenConfig{
		AccessTTL:          cfg.Auth.AccessTokenTTL,
		RefreshTTL:         cfg.Auth.RefreshTokenTTL,
		RememberRefreshTTL: cfg.Auth.RememberRefreshTTL,
	})

	h := handlers.NewHandlers(authService, photoStorage, cfg)

	r := gin.New()
	r.Use(
		middleware.RecoveryMiddleware(),
		middleware.RequestIDMiddleware(),
		middleware.PerformanceMiddleware(),
		middleware.GinLoggerMiddleware(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-Response-Time", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	r.Use(cors.New(corsConfig))

	if tp != nil {
		r.Use(middleware.TracingMiddleware(cfg.App.Name), middleware.SpanEnrichmentMiddleware())
	}
	r.Use(middleware.MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Local uploads are served by the API itself
	if local, ok := photoStorage.(*storage.LocalStorage); ok && strings.HasPrefix(local.BaseURL(), "/") {
		r.Static(local.BaseURL(), local.Root())
	}

	h.RegisterRoutes(r)

	var handler http.Handler = middleware.StripTrailingSlash(r)
	if tp != nil {
		handler = otelhttp.NewHandler(handler, cfg.App.Name)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("Server exited")
}
