package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HTTPClientConfig holds configuration for an instrumented HTTP client
type HTTPClientConfig struct {
	ServiceName string        // Name of the external service (e.g., "s3", "minio")
	Timeout     time.Duration // Request timeout
}

// NewInstrumentedTransport wraps base (or http.DefaultTransport) with otelhttp
func NewInstrumentedTransport(serviceName string, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s", serviceName, r.Method)
		}),
		otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
	)
}

// NewInstrumentedHTTPClient creates an HTTP client with automatic tracing
func NewInstrumentedHTTPClient(cfg HTTPClientConfig) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewInstrumentedTransport(cfg.ServiceName, nil),
	}
}

// StorageCallAttrs describes an object storage operation
type StorageCallAttrs struct {
	Backend     string // local, s3, minio
	Bucket      string
	Key         string
	ContentType string
	SizeBytes   int64
}

// TraceStorageCall creates a span for an object storage operation
func TraceStorageCall(ctx context.Context, operation string, attrs StorageCallAttrs) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("storage").Start(ctx, "storage."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.operation", operation),
			attribute.String("storage.backend", attrs.Backend),
		),
	)

	if attrs.Bucket != "" {
		span.SetAttributes(attribute.String("storage.bucket", attrs.Bucket))
	}
	if attrs.Key != "" {
		span.SetAttributes(attribute.String("storage.key", attrs.Key))
	}
	if attrs.ContentType != "" {
		span.SetAttributes(attribute.String("storage.content_type", attrs.ContentType))
	}
	if attrs.SizeBytes > 0 {
		span.SetAttributes(attribute.Int64("storage.size_bytes", attrs.SizeBytes))
	}

	return ctx, span
}

// RecordSpanError marks span as failed with err
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
