package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"tripmate/internal/model"
	"tripmate/pkg/logger"
	"tripmate/pkg/snowflake"
	"tripmate/storage/mq"
)

// PublishReminderDelivery 发布提醒投递消息（延迟消息）。
// 注意：延迟超过 24 小时会返回错误，那种任务留给定时扫描窗口处理。
func PublishReminderDelivery(msg model.ReminderDeliveryMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("task_code", msg.TaskCode),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("reminder_delivery_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second
	if delay < 0 {
		delay = 0
	}

	// RabbitMQ 延迟消息的限制
	if delay > 24*time.Hour {
		return fmt.Errorf("delay %v exceeds 24 hours limit, use scheduled scan instead", delay)
	}

	err := mq.PublishDelayedMessage(
		DelayedExchange,
		ReminderDeliveryRoutingKey,
		delay,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish reminder delivery message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("task_code", msg.TaskCode),
			zap.Int64("plan_id", msg.PlanID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published reminder delivery message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("task_code", msg.TaskCode),
		zap.Int64("plan_id", msg.PlanID),
		zap.String("kind", msg.Kind),
		zap.Duration("delay", delay),
	)

	return nil
}

// ScheduleReminderDeliveryIfDue 按计划发送时间决定是否立刻投递延迟消息。
// 延迟 <= 24 小时发送延迟消息并返回 true，更远的任务等下一轮扫描。
func ScheduleReminderDeliveryIfDue(task *model.ReminderTask, now time.Time) (bool, error) {
	delay := task.ScheduledAt.Sub(now)
	if delay <= 0 {
		delay = 0
	}

	if delay > 24*time.Hour {
		logger.Logger.Debug("Reminder delay exceeds 24 hours, deferred to next scan",
			zap.Int64("task_code", task.TaskCode),
			zap.Time("scheduled_at", task.ScheduledAt),
		)
		return false, nil
	}

	msg := model.ReminderDeliveryMessage{
		TaskID:        task.ID,
		TaskCode:      task.TaskCode,
		UserID:        task.UserID,
		PlanID:        task.PlanID,
		DayIndex:      task.DayIndex,
		ActivityIndex: task.ActivityIndex,
		Kind:          string(task.Kind),
		Channel:       string(task.Channel),
		Phone:         task.Phone,
		Message:       task.Message,
		ScheduledAt:   task.ScheduledAt.Format(time.RFC3339),
		DelaySeconds:  int(delay.Seconds()),
	}

	if err := PublishReminderDelivery(msg); err != nil {
		return false, fmt.Errorf("failed to publish reminder delivery: %w", err)
	}

	return true, nil
}

// PublishPlanDeletedEvent 发布行程删除事件。
// planRef 是计划的行内主键，worker 清理提醒任务和槽位标记时用。
func PublishPlanDeletedEvent(planID, planRef, userID int64) error {
	event := model.EventMessage{
		EventKey:   PlanDeletedRoutingKey,
		EventType:  "plan_deleted",
		OccurredAt: time.Now().Format(time.RFC3339),
		Payload: map[string]interface{}{
			"plan_id":  planID,
			"plan_ref": planRef,
			"user_id":  userID,
		},
	}

	err := mq.PublishMessage(
		EventsExchange,
		PlanDeletedRoutingKey,
		event,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish plan deleted event",
			zap.Int64("plan_id", planID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// PublishQuotaDepletedEvent 发布 AI 生成额度耗尽事件
func PublishQuotaDepletedEvent(userID int64) error {
	event := model.EventMessage{
		EventKey:   QuotaDepletedRoutingKey,
		EventType:  "aiplan_quota_depleted",
		OccurredAt: time.Now().Format(time.RFC3339),
		Payload: map[string]interface{}{
			"user_id": userID,
		},
	}

	err := mq.PublishMessage(
		EventsExchange,
		QuotaDepletedRoutingKey,
		event,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish quota depleted event",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
