package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/emrealmaoglu/trailium/internal/util"
)

// TracingMiddleware returns a middleware that traces HTTP requests using OpenTelemetry
// It wraps the official otelgin middleware and adds custom span attributes
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if user := util.CurrentUser(c); user != nil {
			span.SetAttributes(attribute.Int64("user.id", int64(user.ID)))
		}
		if page := c.Query("page"); page != "" {
			span.SetAttributes(attribute.String("query.page", page))
		}
		if size := c.Query("page_size"); size != "" {
			span.SetAttributes(attribute.String("query.page_size", size))
		}

		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err, trace.WithStackTrace(true))
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}

// SpanEnrichmentMiddleware records response metadata on the request span.
func SpanEnrichmentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			span.SetStatus(codes.Error, "Server error")
		case statusCode == 404:
			span.SetStatus(codes.Unset, "Not found")
		case statusCode >= 400:
			span.SetStatus(codes.Error, "Client error")
		default:
			span.SetStatus(codes.Ok, "")
		}

		if responseSize := c.Writer.Size(); responseSize > 0 {
			span.SetAttributes(attribute.Int64("http.response.size_bytes", int64(responseSize)))
		}
	}
}
