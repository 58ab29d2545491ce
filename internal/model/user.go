package model

// ReminderChannel 提醒渠道枚举
type ReminderChannel string

const (
	ReminderChannelSMS  ReminderChannel = "sms"
	ReminderChannelNone ReminderChannel = "none"
)

// User 用户模型
type User struct {
	BaseModel
	PublicID     int64  `gorm:"uniqueIndex;not null" json:"public_id"`
	Email        string `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(128);not null" json:"-"`
	Nickname     string `gorm:"type:varchar(64);not null;default:''" json:"nickname"`
	Phone        string `gorm:"type:varchar(32);not null;default:''" json:"phone"`

	// 提醒设置
	ReminderEnabled bool            `gorm:"not null;default:true" json:"reminder_enabled"`
	ReminderChannel ReminderChannel `gorm:"type:varchar(16);not null;default:'sms'" json:"reminder_channel"`

	// AI 生成剩余额度
	AIPlanQuota int `gorm:"not null;default:20" json:"ai_plan_quota"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
