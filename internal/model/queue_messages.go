package model

// ReminderDeliveryMessage 提醒投递消息。
// Scheduler 扫描后经延迟交换机投递，Worker 消费时按 MessageID 做幂等检查。
type ReminderDeliveryMessage struct {
	MessageID     string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	TaskID        int64  `json:"task_id"`
	TaskCode      int64  `json:"task_code"` // 业务ID，用于查询任务记录
	UserID        int64  `json:"user_id"`
	PlanID        int64  `json:"plan_id"`
	DayIndex      int    `json:"day_index"`
	ActivityIndex int    `json:"activity_index"`
	Kind          string `json:"kind"`
	Channel       string `json:"channel"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	ScheduledAt   string `json:"scheduled_at"`
	DelaySeconds  int    `json:"delay_seconds"`
}

// EventMessage 事件消息（用于事件总线）
type EventMessage struct {
	Payload    map[string]interface{} `json:"payload"`
	EventKey   string                 `json:"event_key"`
	EventType  string                 `json:"event_type"`
	OccurredAt string                 `json:"occurred_at"`
}
