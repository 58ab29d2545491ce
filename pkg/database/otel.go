package database

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var (
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
)

// InitDatabaseMetrics 初始化数据库指标
func InitDatabaseMetrics(meter metric.Meter) error {
	var err error

	dbQueriesTotal, err = meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return err
	}

	dbQueryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return err
	}

	return nil
}

// TracingPlugin GORM 链路追踪插件，给每次数据库操作生成 client span 并记录指标
type TracingPlugin struct {
	tracer       trace.Tracer
	serviceName  string
	maxSQLLength int
}

// NewTracingPlugin 创建插件实例
func NewTracingPlugin(serviceName string) *TracingPlugin {
	if serviceName == "" {
		serviceName = "tripmate"
	}

	return &TracingPlugin{
		tracer:       otel.Tracer(serviceName + ".gorm"),
		serviceName:  serviceName,
		maxSQLLength: 500,
	}
}

// Name 实现 gorm.Plugin 接口
func (p *TracingPlugin) Name() string {
	return "otel_tracing"
}

// Initialize 注册回调
func (p *TracingPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()

	callbacks.Query().Before("gorm:query").Register("otel:before_query", p.before)
	callbacks.Query().After("gorm:query").Register("otel:after_query", p.after)

	callbacks.Create().Before("gorm:create").Register("otel:before_create", p.before)
	callbacks.Create().After("gorm:create").Register("otel:after_create", p.after)

	callbacks.Update().Before("gorm:update").Register("otel:before_update", p.before)
	callbacks.Update().After("gorm:update").Register("otel:after_update", p.after)

	callbacks.Delete().Before("gorm:delete").Register("otel:before_delete", p.before)
	callbacks.Delete().After("gorm:delete").Register("otel:after_delete", p.after)

	callbacks.Row().Before("gorm:row").Register("otel:before_row", p.before)
	callbacks.Row().After("gorm:row").Register("otel:after_row", p.after)

	callbacks.Raw().Before("gorm:raw").Register("otel:before_raw", p.before)
	callbacks.Raw().After("gorm:raw").Register("otel:after_raw", p.after)

	return nil
}

func (p *TracingPlugin) before(db *gorm.DB) {
	ctx, span := p.tracer.Start(db.Statement.Context, p.operationName(db),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(p.attributes(db)...),
	)

	db.InstanceSet("otel:start_time", time.Now())
	db.InstanceSet("otel:span", span)
	db.Statement.Context = ctx
}

func (p *TracingPlugin) after(db *gorm.DB) {
	spanI, exists := db.InstanceGet("otel:span")
	if !exists {
		return
	}
	span, ok := spanI.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	var duration float64
	if startI, exists := db.InstanceGet("otel:start_time"); exists {
		if start, ok := startI.(time.Time); ok {
			duration = time.Since(start).Seconds()
		}
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}

	switch {
	case db.Error == nil:
		span.SetStatus(codes.Ok, "Success")
	case db.Error == gorm.ErrRecordNotFound:
		// 查空不算错误
		span.SetStatus(codes.Ok, "Record not found")
	default:
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	p.recordMetrics(db.Statement.Context, db, duration)
}

func (p *TracingPlugin) operationName(db *gorm.DB) string {
	sql := strings.ToUpper(strings.TrimSpace(db.Statement.SQL.String()))
	switch {
	case sql == "":
		return "db.unknown"
	case strings.HasPrefix(sql, "SELECT"):
		return "db.select"
	case strings.HasPrefix(sql, "INSERT"):
		return "db.insert"
	case strings.HasPrefix(sql, "UPDATE"):
		return "db.update"
	case strings.HasPrefix(sql, "DELETE"):
		return "db.delete"
	default:
		return "db.query"
	}
}

var sensitiveSQLPattern = regexp.MustCompile(`(password|token|secret)\s*=\s*'[^']*'`)

func (p *TracingPlugin) attributes(db *gorm.DB) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("service.name", p.serviceName),
	}

	if table := db.Statement.Table; table != "" {
		attrs = append(attrs, attribute.String("db.table", table))
	}

	sql := db.Statement.SQL.String()
	if len(sql) > p.maxSQLLength {
		sql = sql[:p.maxSQLLength] + "..."
	}
	sql = sensitiveSQLPattern.ReplaceAllString(strings.ToLower(sql), "$1='***'")
	attrs = append(attrs, semconv.DBStatement(sql))

	return attrs
}

func (p *TracingPlugin) recordMetrics(ctx context.Context, db *gorm.DB, duration float64) {
	if dbQueriesTotal == nil || dbQueryDuration == nil {
		return
	}

	status := "success"
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		status = "error"
	}

	labels := metric.WithAttributes(
		attribute.String("db.operation", p.operationName(db)),
		attribute.String("db.status", status),
	)

	dbQueriesTotal.Add(ctx, 1, labels)
	dbQueryDuration.Record(ctx, duration, labels)
}
