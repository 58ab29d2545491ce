package cache

import (
	"context"
	"fmt"
	"time"

	"tripmate/storage/redis"
)

const (
	// 同一活动槽位的投放标记，scheduler 多轮扫描只投放一次
	reminderScheduledPrefix = "reminder:scheduled"
	// worker 消费消息的幂等标记
	reminderMessagePrefix = "reminder:msg"

	reminderScheduledTTL = 7 * 24 * time.Hour
	reminderMessageTTL   = 24 * time.Hour
)

func reminderSlotKey(planID int64, dayIndex, activityIndex int, kind string) string {
	return redis.Key(reminderScheduledPrefix,
		fmt.Sprintf("%d:%d:%d:%s", planID, dayIndex, activityIndex, kind))
}

// MarkReminderScheduled 标记活动槽位已投放。
// SetNX 原子判断，返回 false 表示此前已投放过。
func MarkReminderScheduled(ctx context.Context, planID int64, dayIndex, activityIndex int, kind string) (bool, error) {
	key := reminderSlotKey(planID, dayIndex, activityIndex, kind)
	ok, err := redis.Client().SetNX(ctx, key, "1", reminderScheduledTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder scheduled: %w", err)
	}
	return ok, nil
}

// UnmarkReminderScheduled 清除单个槽位标记，投递消息发布失败时回滚用
func UnmarkReminderScheduled(ctx context.Context, planID int64, dayIndex, activityIndex int, kind string) error {
	return redis.Client().Del(ctx, reminderSlotKey(planID, dayIndex, activityIndex, kind)).Err()
}

// ClearPlanReminderMarks 清除计划的全部槽位标记。
// 计划重写或删除后调用，否则 7 天 TTL 内重建的同槽位任务会被投放去重拦下。
func ClearPlanReminderMarks(ctx context.Context, planID int64) error {
	pattern := redis.Key(reminderScheduledPrefix, fmt.Sprintf("%d:*", planID))

	var cursor uint64
	for {
		keys, next, err := redis.Client().Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan reminder slot keys: %w", err)
		}
		if len(keys) > 0 {
			if err := redis.Client().Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to clear reminder slot keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// MarkMessageProcessed 消息级幂等标记，返回 false 表示该消息已被消费过
func MarkMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	key := redis.Key(reminderMessagePrefix, messageID)
	ok, err := redis.Client().SetNX(ctx, key, "1", reminderMessageTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message processed: %w", err)
	}
	return ok, nil
}

// UnmarkMessageProcessed 投递失败需要重试时释放幂等标记
func UnmarkMessageProcessed(ctx context.Context, messageID string) error {
	key := redis.Key(reminderMessagePrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}
