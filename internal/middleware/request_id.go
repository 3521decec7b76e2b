package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
)

const requestIDKey = "request_id"

// RequestIDMiddleware adds a unique request ID to each request
// If X-Request-ID header is present, it will be used; otherwise a new UUID is generated.
// The ID is also attached to the active span and propagated as trace baggage.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}

		if member, err := baggage.NewMember(requestIDKey, requestID); err == nil {
			if b, err := baggage.New(member); err == nil {
				c.Request = c.Request.WithContext(baggage.ContextWithBaggage(c.Request.Context(), b))
			}
		}

		logger.Log.Debug("request started",
			logger.WithRequestID(requestID),
			logger.WithIP(c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

// GetRequestID returns the request ID stored by RequestIDMiddleware
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestIDFromContext extracts the request ID from trace baggage.
// Useful in code that only has a context.Context.
func RequestIDFromContext(ctx context.Context) string {
	return baggage.FromContext(ctx).Member(requestIDKey).Value()
}
