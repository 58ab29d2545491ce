package model

import "time"

// ReminderKind 提醒类型枚举
type ReminderKind string

const (
	ReminderKindTripStart ReminderKind = "trip_start" // 行程预定提醒，创建时立即发送
	ReminderKindActivity  ReminderKind = "activity"   // 活动开始前的提前提醒
)

// ReminderTaskStatus 提醒任务状态枚举
type ReminderTaskStatus string

const (
	ReminderTaskStatusPending    ReminderTaskStatus = "pending"    // 待投递
	ReminderTaskStatusProcessing ReminderTaskStatus = "processing" // 投递中
	ReminderTaskStatusSuccess    ReminderTaskStatus = "success"    // 已送达
	ReminderTaskStatusFailed     ReminderTaskStatus = "failed"     // 投递失败
	ReminderTaskStatusSkipped    ReminderTaskStatus = "skipped"    // 去重命中或已过期，跳过
)

// ReminderTask 提醒任务模型。
// 去重键是 (plan_id, day_index, activity_index, kind)，
// 同一活动不论扫描多少轮只会有一条任务。
type ReminderTask struct {
	BaseModel
	TaskCode int64 `gorm:"uniqueIndex;not null" json:"task_code"`
	UserID   int64 `gorm:"not null;index:idx_reminder_tasks_user" json:"user_id"`
	PlanID   int64 `gorm:"not null;index:idx_reminder_tasks_plan;uniqueIndex:idx_reminder_tasks_slot" json:"plan_id"`

	DayIndex      int          `gorm:"not null;uniqueIndex:idx_reminder_tasks_slot" json:"day_index"`
	ActivityIndex int          `gorm:"not null;uniqueIndex:idx_reminder_tasks_slot" json:"activity_index"`
	Kind          ReminderKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_reminder_tasks_slot" json:"kind"`

	Channel ReminderChannel `gorm:"type:varchar(16);not null;default:'sms'" json:"channel"`
	Phone   string          `gorm:"type:varchar(32);not null;default:''" json:"-"`
	Message string          `gorm:"type:varchar(512);not null" json:"message"`

	Status      ReminderTaskStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_reminder_tasks_status" json:"status"`
	RetryCount  int                `gorm:"type:smallint;not null;default:0" json:"retry_count"`
	ScheduledAt time.Time          `gorm:"type:timestamptz;not null;index:idx_reminder_tasks_status" json:"scheduled_at"`
	ProcessedAt *time.Time         `gorm:"type:timestamptz" json:"processed_at,omitempty"`
}

// TableName 指定表名
func (ReminderTask) TableName() string {
	return "reminder_tasks"
}
