package telemetry

import (
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/metrics"
)

const (
	dbSystemKey    = "db.system"
	dbTableKey     = "db.table"
	dbOperationKey = "db.operation"
	dbStatementKey = "db.statement"

	spanKey      = "otel:span"
	startTimeKey = "otel:startTime"
	operationKey = "otel:operation"
)

// GORMTracingPlugin returns a GORM plugin that traces database operations
// and records query metrics.
func GORMTracingPlugin() gorm.Plugin {
	return &tracingPlugin{
		tracer: otel.Tracer("gorm"),
	}
}

type tracingPlugin struct {
	tracer trace.Tracer
}

func (p *tracingPlugin) Name() string {
	return "telemetry:tracing"
}

func (p *tracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		name     string
		register func(name string, fn func(*gorm.DB)) error
		fn       func(*gorm.DB)
	}{
		{"telemetry:before_query", cb.Query().Before("gorm:query").Register, p.before("SELECT")},
		{"telemetry:before_row", cb.Row().Before("gorm:row").Register, p.before("SELECT")},
		{"telemetry:before_create", cb.Create().Before("gorm:create").Register, p.before("INSERT")},
		{"telemetry:before_update", cb.Update().Before("gorm:update").Register, p.before("UPDATE")},
		{"telemetry:before_delete", cb.Delete().Before("gorm:delete").Register, p.before("DELETE")},
		{"telemetry:before_raw", cb.Raw().Before("gorm:raw").Register, p.before("RAW")},
		{"telemetry:after_query", cb.Query().After("gorm:query").Register, p.after},
		{"telemetry:after_row", cb.Row().After("gorm:row").Register, p.after},
		{"telemetry:after_create", cb.Create().After("gorm:create").Register, p.after},
		{"telemetry:after_update", cb.Update().After("gorm:update").Register, p.after},
		{"telemetry:after_delete", cb.Delete().After("gorm:delete").Register, p.after},
		{"telemetry:after_raw", cb.Raw().After("gorm:raw").Register, p.after},
	}

	for _, r := range registrations {
		if err := r.register(r.name, r.fn); err != nil {
			return fmt.Errorf("failed to register %s callback: %w", r.name, err)
		}
	}
	return nil
}

func (p *tracingPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		db.InstanceSet(startTimeKey, time.Now())
		db.InstanceSet(operationKey, operation)

		ctx := db.Statement.Context
		if ctx == nil {
			return
		}

		_, span := p.tracer.Start(ctx, fmt.Sprintf("db.%s", strings.ToLower(operation)),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String(dbSystemKey, db.Dialector.Name()),
				attribute.String(dbTableKey, tableName(db)),
				attribute.String(dbOperationKey, operation),
			),
		)
		db.InstanceSet(spanKey, span)
	}
}

func (p *tracingPlugin) after(db *gorm.DB) {
	var elapsed time.Duration
	if startTimeRaw, exists := db.InstanceGet(startTimeKey); exists {
		if startTime, ok := startTimeRaw.(time.Time); ok {
			elapsed = time.Since(startTime)
		}
	}

	operation := "unknown"
	if raw, exists := db.InstanceGet(operationKey); exists {
		if op, ok := raw.(string); ok {
			operation = op
		}
	}
	recordQueryMetrics(operation, tableName(db), elapsed, db.Error)

	spanRaw, exists := db.InstanceGet(spanKey)
	if !exists {
		return
	}
	span, ok := spanRaw.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	span.SetAttributes(attribute.Int64("db.duration_ms", elapsed.Milliseconds()))

	if sql := db.Statement.SQL.String(); sql != "" {
		// Truncate very long queries
		if len(sql) > 500 {
			sql = sql[:500] + "... (truncated)"
		}
		span.SetAttributes(attribute.String(dbStatementKey, sql))
	}

	if db.RowsAffected > 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}

func recordQueryMetrics(operation, table string, elapsed time.Duration, err error) {
	m := metrics.Get()
	status := "success"
	if err != nil && err != gorm.ErrRecordNotFound {
		status = "error"
	}
	m.DatabaseQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
	m.DatabaseQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

func tableName(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	if db.Statement.Schema != nil {
		return db.Statement.Schema.Table
	}
	return "unknown"
}
