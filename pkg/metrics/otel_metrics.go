package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 行程提醒相关指标
	ReminderSentTotal    metric.Int64Counter
	ReminderSendDuration metric.Float64Histogram
	ReminderScheduled    metric.Int64Counter
	ReminderDeduplicated metric.Int64Counter
	ReminderRetryTotal   metric.Int64Counter
	ReminderActiveTasks  metric.Int64UpDownCounter
	ReminderQueueLength  metric.Int64UpDownCounter

	// AI 行程生成相关指标
	AIPlanGeneratedTotal metric.Int64Counter
	AIPlanDuration       metric.Float64Histogram
	AIPlanQuotaDenied    metric.Int64Counter
}

var (
	metrics *OTelMetrics
	meter   = otel.Meter("tripmate")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.ReminderSentTotal, err = meter.Int64Counter(
		"reminder_sent_total",
		metric.WithDescription("Total number of trip reminders delivered"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderSendDuration, err = meter.Float64Histogram(
		"reminder_send_duration_seconds",
		metric.WithDescription("Time spent delivering a reminder in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderScheduled, err = meter.Int64Counter(
		"reminder_scheduled_total",
		metric.WithDescription("Total number of reminders queued for future delivery"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderDeduplicated, err = meter.Int64Counter(
		"reminder_deduplicated_total",
		metric.WithDescription("Total number of reminders skipped as duplicates"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderRetryTotal, err = meter.Int64Counter(
		"reminder_retry_total",
		metric.WithDescription("Total number of reminder delivery retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderActiveTasks, err = meter.Int64UpDownCounter(
		"reminder_active_tasks",
		metric.WithDescription("Number of reminder tasks currently in flight"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return err
	}

	metrics.ReminderQueueLength, err = meter.Int64UpDownCounter(
		"reminder_queue_length",
		metric.WithDescription("Number of messages in the reminder queue"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	metrics.AIPlanGeneratedTotal, err = meter.Int64Counter(
		"aiplan_generated_total",
		metric.WithDescription("Total number of AI itinerary generations"),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		return err
	}

	metrics.AIPlanDuration, err = meter.Float64Histogram(
		"aiplan_duration_seconds",
		metric.WithDescription("Time spent generating an AI itinerary in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.AIPlanQuotaDenied, err = meter.Int64Counter(
		"aiplan_quota_denied_total",
		metric.WithDescription("Total number of AI generations denied by quota"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordReminderSent 记录提醒投递成功
func (m *OTelMetrics) RecordReminderSent(ctx context.Context, kind, channel string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("status", "success"),
		attribute.String("channel", channel),
	}

	m.ReminderSentTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ReminderSendDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("channel", channel),
	))
}

// RecordReminderFailed 记录提醒投递失败
func (m *OTelMetrics) RecordReminderFailed(ctx context.Context, kind, channel string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("status", "failed"),
		attribute.String("channel", channel),
	}

	m.ReminderSentTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ReminderSendDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("channel", channel),
	))
}

// RecordReminderScheduled 记录提醒已入队
func (m *OTelMetrics) RecordReminderScheduled(ctx context.Context, kind string) {
	m.ReminderScheduled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordReminderDeduplicated 记录重复提醒被跳过
func (m *OTelMetrics) RecordReminderDeduplicated(ctx context.Context, kind string) {
	m.ReminderDeduplicated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordReminderRetry 记录提醒重试
func (m *OTelMetrics) RecordReminderRetry(ctx context.Context, kind, reason string) {
	m.ReminderRetryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("retry_reason", reason),
	))
}

// AddReminderActiveTask 增加在途提醒任务
func (m *OTelMetrics) AddReminderActiveTask(ctx context.Context, kind string) {
	m.ReminderActiveTasks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// SubtractReminderActiveTask 减少在途提醒任务
func (m *OTelMetrics) SubtractReminderActiveTask(ctx context.Context, kind string) {
	m.ReminderActiveTasks.Add(ctx, -1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// SetReminderQueueLength 设置提醒队列长度
func (m *OTelMetrics) SetReminderQueueLength(ctx context.Context, queueName string, length int64) {
	m.ReminderQueueLength.Add(ctx, length, metric.WithAttributes(
		attribute.String("queue_name", queueName),
	))
}

// RecordAIPlanGenerated 记录一次 AI 行程生成
func (m *OTelMetrics) RecordAIPlanGenerated(ctx context.Context, provider, status string, duration float64) {
	m.AIPlanGeneratedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
	m.AIPlanDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordAIPlanQuotaDenied 记录一次超额拒绝
func (m *OTelMetrics) RecordAIPlanQuotaDenied(ctx context.Context, userID int64) {
	m.AIPlanQuotaDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("user_id", fmt.Sprintf("%d", userID)),
	))
}
