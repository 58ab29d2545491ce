package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripmate/internal/cache"
	"tripmate/internal/model"
	"tripmate/internal/repository"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/pkg/metrics"
	"tripmate/pkg/sms"
	"tripmate/storage/mq"
)

// maxDeliveryRetries 投递失败重试上限，超过后任务标记为 failed 不再回队
const maxDeliveryRetries = 3

// StartReminderDeliveryConsumer 启动提醒投递消费者。
// 幂等分三层：MessageID 的 SETNX 去重、任务状态 CAS、数据库槽位唯一索引。
func StartReminderDeliveryConsumer(ctx context.Context) error {
	reminderRepo := repository.NewReminderRepo()
	planRepo := repository.NewPlanRepo()

	handler := func(body []byte) error {
		var msg model.ReminderDeliveryMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal reminder delivery message: %w", err)
		}

		first, err := cache.MarkMessageProcessed(ctx, msg.MessageID)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// Redis 不可用时继续处理，后面还有任务状态 CAS 兜底
		} else if !first {
			logger.Logger.Info("Message already processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("task_code", msg.TaskCode),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("message %s already processed", msg.MessageID)}
		}

		if err := deliverReminder(ctx, reminderRepo, planRepo, &msg); err != nil {
			// 回队重试前取消消息标记，否则重投会被去重拦下
			if unmarkErr := cache.UnmarkMessageProcessed(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return err
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         ReminderDeliveryQueue,
		ConsumerTag:   "reminder_delivery_consumer",
		PrefetchCount: 20,
		Handler:       handler,
	})
}

// deliverReminder 执行单条提醒投递。返回 SkipMessageError 表示确认并跳过，
// 返回其他错误表示回队重试。
func deliverReminder(ctx context.Context, reminderRepo *repository.ReminderRepo, planRepo *repository.PlanRepo, msg *model.ReminderDeliveryMessage) error {
	task, err := reminderRepo.GetByTaskCode(ctx, msg.TaskCode)
	if err != nil {
		return fmt.Errorf("failed to query reminder task: %w", err)
	}
	if task == nil {
		// 行程删除会清掉未投递任务，消息成为孤儿
		return &errors.SkipMessageError{Reason: fmt.Sprintf("reminder task %d no longer exists", msg.TaskCode)}
	}

	switch task.Status {
	case model.ReminderTaskStatusSuccess, model.ReminderTaskStatusSkipped:
		return &errors.SkipMessageError{Reason: fmt.Sprintf("task %d already in terminal state %s", task.TaskCode, task.Status)}
	case model.ReminderTaskStatusFailed:
		if task.RetryCount >= maxDeliveryRetries {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("task %d exceeded retry limit", task.TaskCode)}
		}
	}

	claimed, err := reminderRepo.MarkProcessing(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to mark task processing: %w", err)
	}
	if !claimed && task.Status != model.ReminderTaskStatusFailed {
		return &errors.SkipMessageError{Reason: fmt.Sprintf("task %d claimed by another worker", task.TaskCode)}
	}

	if task.Channel == model.ReminderChannelNone {
		// 用户关掉了提醒渠道，任务保留记录但不投递
		if err := reminderRepo.MarkResult(ctx, task.ID, model.ReminderTaskStatusSkipped); err != nil {
			logger.Logger.Warn("Failed to mark task skipped",
				zap.Int64("task_code", task.TaskCode),
				zap.Error(err),
			)
		}
		return &errors.SkipMessageError{Reason: fmt.Sprintf("task %d has no delivery channel", task.TaskCode)}
	}

	m := metrics.GetMetrics()
	if m != nil {
		m.AddReminderActiveTask(ctx, msg.Kind)
		defer m.SubtractReminderActiveTask(ctx, msg.Kind)
	}

	start := time.Now()
	_, sendErr := sms.SendReminderSMS(ctx, task.Phone, task.Message)
	elapsed := time.Since(start).Seconds()

	if sendErr != nil {
		if m != nil {
			m.RecordReminderFailed(ctx, msg.Kind, msg.Channel, elapsed)
			m.RecordReminderRetry(ctx, msg.Kind, "sms_send_failed")
		}

		if err := reminderRepo.IncrementRetry(ctx, task.ID); err != nil {
			logger.Logger.Warn("Failed to increment retry count",
				zap.Int64("task_code", task.TaskCode),
				zap.Error(err),
			)
		}
		if err := reminderRepo.MarkResult(ctx, task.ID, model.ReminderTaskStatusFailed); err != nil {
			logger.Logger.Warn("Failed to mark task failed",
				zap.Int64("task_code", task.TaskCode),
				zap.Error(err),
			)
		}

		if task.RetryCount+1 >= maxDeliveryRetries {
			logger.Logger.Error("Reminder delivery abandoned after retries",
				zap.Int64("task_code", task.TaskCode),
				zap.Int64("plan_id", task.PlanID),
				zap.Int("retry_count", task.RetryCount+1),
				zap.Error(sendErr),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("task %d abandoned after %d retries", task.TaskCode, task.RetryCount+1)}
		}

		return fmt.Errorf("failed to send reminder SMS: %w", sendErr)
	}

	if err := reminderRepo.MarkResult(ctx, task.ID, model.ReminderTaskStatusSuccess); err != nil {
		// 短信已发出，状态没写上只记日志，消息去重标记挡住重发
		logger.Logger.Warn("Failed to mark task success",
			zap.Int64("task_code", task.TaskCode),
			zap.Error(err),
		)
	}

	if m != nil {
		m.RecordReminderSent(ctx, msg.Kind, msg.Channel, elapsed)
	}

	// 行程预定提醒同时通知共享成员，成员收不到不影响任务终态
	if msg.Kind == string(model.ReminderKindTripStart) {
		notifyShareMembers(ctx, planRepo, task)
	}

	logger.Logger.Info("Reminder delivered",
		zap.Int64("task_code", task.TaskCode),
		zap.Int64("plan_id", task.PlanID),
		zap.String("kind", msg.Kind),
		zap.Float64("elapsed_seconds", elapsed),
	)

	return nil
}

// notifyShareMembers 给计划的共享成员群发同一条提醒短信
func notifyShareMembers(ctx context.Context, planRepo *repository.PlanRepo, task *model.ReminderTask) {
	members, err := planRepo.ListShareMembers(ctx, task.PlanID)
	if err != nil {
		logger.Logger.Warn("Failed to query share members",
			zap.Int64("plan_id", task.PlanID),
			zap.Error(err),
		)
		return
	}
	if len(members) == 0 {
		return
	}

	phones := make([]string, 0, len(members))
	for _, member := range members {
		if member.Phone == task.Phone {
			continue
		}
		phones = append(phones, member.Phone)
	}
	if len(phones) == 0 {
		return
	}

	if _, err := sms.SendBatchReminderSMS(ctx, phones, task.Message); err != nil {
		logger.Logger.Warn("Failed to notify share members",
			zap.Int64("plan_id", task.PlanID),
			zap.Int("member_count", len(phones)),
			zap.Error(err),
		)
		return
	}

	logger.Logger.Info("Share members notified",
		zap.Int64("plan_id", task.PlanID),
		zap.Int("member_count", len(phones)),
	)
}

// StartEventsConsumer 启动事件消费者，处理事件总线上的清理类事件
func StartEventsConsumer(ctx context.Context) error {
	reminderRepo := repository.NewReminderRepo()

	handler := func(body []byte) error {
		var event model.EventMessage
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to unmarshal event message: %w", err)
		}

		switch event.EventKey {
		case PlanDeletedRoutingKey:
			return handlePlanDeleted(ctx, reminderRepo, &event)
		case QuotaDepletedRoutingKey:
			// 目前只记档，额度告警后续接运营通道
			logger.Logger.Info("AI plan quota depleted",
				zap.Any("payload", event.Payload),
			)
			return nil
		default:
			return &errors.SkipMessageError{Reason: fmt.Sprintf("unknown event key %s", event.EventKey)}
		}
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         EventsQueue,
		ConsumerTag:   "events_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// handlePlanDeleted 行程删除后的异步清理。API 实例删除时已经清过一轮，
// 这里按事件再清一遍，单实例清理失败也能收敛。全部操作幂等。
func handlePlanDeleted(ctx context.Context, reminderRepo *repository.ReminderRepo, event *model.EventMessage) error {
	planID, ok := eventInt64(event.Payload, "plan_id")
	if !ok {
		return &errors.SkipMessageError{Reason: "plan.deleted event missing plan_id"}
	}
	planRef, ok := eventInt64(event.Payload, "plan_ref")
	if !ok {
		return &errors.SkipMessageError{Reason: "plan.deleted event missing plan_ref"}
	}

	if err := cache.InvalidateItinerary(ctx, planID); err != nil {
		return fmt.Errorf("failed to invalidate itinerary cache: %w", err)
	}
	if err := reminderRepo.DeleteByPlan(ctx, planRef); err != nil {
		return fmt.Errorf("failed to delete plan reminders: %w", err)
	}
	if err := cache.ClearPlanReminderMarks(ctx, planRef); err != nil {
		return fmt.Errorf("failed to clear reminder slot marks: %w", err)
	}

	logger.Logger.Info("Plan cleanup completed",
		zap.Int64("plan_id", planID),
	)

	return nil
}

// eventInt64 事件 payload 过一遍 JSON 之后数字统一成 float64
func eventInt64(payload map[string]interface{}, key string) (int64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// StartAllConsumers 启动 worker 进程的全部消费者，阻塞到 ctx 取消且消费者全部退出
func StartAllConsumers(ctx context.Context) {
	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"reminder_delivery", StartReminderDeliveryConsumer},
		{"events", StartEventsConsumer},
	}

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
