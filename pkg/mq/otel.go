package mq

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	mqMessagesTotal   metric.Int64Counter
	mqMessageDuration metric.Float64Histogram
	mqPublishErrors   metric.Int64Counter
	mqConsumeErrors   metric.Int64Counter
)

// InitMQMetrics 初始化 RabbitMQ 指标
func InitMQMetrics(meter metric.Meter) error {
	var err error

	mqMessagesTotal, err = meter.Int64Counter(
		"mq.messages.total",
		metric.WithDescription("Total number of RabbitMQ messages"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	mqMessageDuration, err = meter.Float64Histogram(
		"mq.message.duration",
		metric.WithDescription("RabbitMQ message processing duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return err
	}

	mqPublishErrors, err = meter.Int64Counter(
		"mq.publish.errors",
		metric.WithDescription("Number of RabbitMQ publish errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mqConsumeErrors, err = meter.Int64Counter(
		"mq.consume.errors",
		metric.WithDescription("Number of RabbitMQ consume errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

var tracer = otel.Tracer("tripmate.rabbitmq")

// TracePublish 为一次发布创建 span 并把追踪上下文注入消息头。
// 返回的 finish 在发布完成后调用，记录状态与耗时。
func TracePublish(ctx context.Context, exchange, routingKey string, headers amqp.Table) (amqp.Table, func(error)) {
	ctx, span := tracer.Start(ctx, "rabbitmq.publish."+exchange, trace.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		semconv.MessagingDestinationName(exchange),
		semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
	))

	if headers == nil {
		headers = make(amqp.Table)
	}
	otel.GetTextMapPropagator().Inject(ctx, &HeaderCarrier{Headers: headers})

	start := time.Now()
	finish := func(err error) {
		defer span.End()

		status := "success"
		if err != nil {
			status = "error"
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			if mqPublishErrors != nil {
				mqPublishErrors.Add(ctx, 1)
			}
		} else {
			span.SetStatus(codes.Ok, "Message published")
		}

		recordMessage(ctx, "publish", exchange, routingKey, status, time.Since(start).Seconds())
	}

	return headers, finish
}

// TraceDelivery 为一条消息的消费处理创建 span，上游的追踪上下文从消息头还原
func TraceDelivery(queue string, msg amqp.Delivery, handle func() error) error {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), &HeaderCarrier{Headers: msg.Headers})

	ctx, span := tracer.Start(ctx, "rabbitmq.consume."+queue, trace.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		semconv.MessagingDestinationName(queue),
		semconv.MessagingRabbitmqDestinationRoutingKey(msg.RoutingKey),
		semconv.MessagingMessageID(msg.MessageId),
	))
	defer span.End()

	start := time.Now()
	err := handle()

	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		if mqConsumeErrors != nil {
			mqConsumeErrors.Add(ctx, 1)
		}
	} else {
		span.SetStatus(codes.Ok, "Message processed")
	}

	recordMessage(ctx, "consume", msg.Exchange, msg.RoutingKey, status, time.Since(start).Seconds())

	return err
}

func recordMessage(ctx context.Context, operation, exchange, routingKey, status string, duration float64) {
	if mqMessagesTotal == nil || mqMessageDuration == nil {
		return
	}

	labels := metric.WithAttributes(
		semconv.MessagingSystem("rabbitmq"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.rabbitmq.exchange", exchange),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	)

	mqMessagesTotal.Add(ctx, 1, labels)
	mqMessageDuration.Record(ctx, duration, labels)
}

// HeaderCarrier 把 amqp.Table 适配成 propagation.TextMapCarrier
type HeaderCarrier struct {
	Headers amqp.Table
}

var _ propagation.TextMapCarrier = (*HeaderCarrier)(nil)

func (c *HeaderCarrier) Get(key string) string {
	if val, ok := c.Headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (c *HeaderCarrier) Set(key, value string) {
	if c.Headers == nil {
		c.Headers = make(amqp.Table)
	}
	c.Headers[key] = value
}

func (c *HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		keys = append(keys, k)
	}
	return keys
}
