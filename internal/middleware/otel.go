package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpRequestsTotal  metric.Int64Counter
	httpDuration       metric.Float64Histogram
	httpActiveRequests metric.Int64UpDownCounter
)

// InitMetrics 初始化 HTTP 服务指标
func InitMetrics(meter metric.Meter) error {
	var err error

	httpRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	httpDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	httpActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	return err
}

// cleanAttr 清洗用户可控字符串，非法 UTF-8 会让 OTLP 导出失败
func cleanAttr(val string) string {
	return strings.ToValidUTF8(val, "")
}

// OpenTelemetryMiddleware 为每个请求开 server span 并记录请求指标
func OpenTelemetryMiddleware() app.HandlerFunc {
	tracer := otel.Tracer("tripmate-server")

	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		if httpActiveRequests != nil {
			httpActiveRequests.Add(ctx, 1)
			defer httpActiveRequests.Add(ctx, -1)
		}

		method := cleanAttr(string(c.Method()))
		route := cleanAttr(string(c.Path()))

		spanCtx, span := tracer.Start(ctx, method+" "+route, trace.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			semconv.HTTPURL(cleanAttr(c.Request.URI().String())),
			attribute.String("http.host", cleanAttr(string(c.Host()))),
			attribute.String("http.user_agent", cleanAttr(string(c.UserAgent()))),
		))
		defer span.End()

		if userID, ok := GetUserID(ctx, c); ok {
			span.SetAttributes(attribute.String("enduser.id", cleanAttr(userID)))
		}
		if requestID := c.GetHeader("X-Request-Id"); len(requestID) > 0 {
			span.SetAttributes(attribute.String("http.request_id", cleanAttr(string(requestID))))
		}

		c.Next(spanCtx)

		elapsed := time.Since(start).Seconds()
		statusCode := int(c.Response.StatusCode())

		span.SetAttributes(semconv.HTTPStatusCode(statusCode))
		if statusCode >= 400 {
			span.SetStatus(codes.Error, "HTTP error")
			if statusCode >= 500 {
				if lastErr := c.Errors.Last(); lastErr != nil {
					span.RecordError(lastErr)
				}
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}

		if httpRequestsTotal == nil {
			return
		}

		labels := metric.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			semconv.HTTPStatusCode(statusCode),
		)
		httpRequestsTotal.Add(ctx, 1, labels)
		httpDuration.Record(ctx, elapsed, labels)
	}
}

// NewServerTracerConfig 返回 Hertz server 的追踪 option 和配套中间件，
// 两者必须一起挂，span 的服务端语义才完整。
func NewServerTracerConfig(opts ...hertztracing.Option) (config.Option, app.HandlerFunc) {
	tracer, cfg := hertztracing.NewServerTracer(opts...)
	return tracer, hertztracing.ServerMiddleware(cfg)
}
