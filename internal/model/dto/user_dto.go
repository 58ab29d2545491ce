package dto

// ========== User 相关 DTO ==========

// UserProfile 用户信息
type UserProfile struct {
	UserID          int64  `json:"user_id"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	Phone           string `json:"phone"`
	ReminderEnabled bool   `json:"reminder_enabled"`
	ReminderChannel string `json:"reminder_channel"`
	AIPlanQuota     int    `json:"ai_plan_quota"`
}

// UpdateProfileRequest 更新资料请求，nil 字段不更新
type UpdateProfileRequest struct {
	Nickname        *string `json:"nickname"`
	Phone           *string `json:"phone"`
	ReminderEnabled *bool   `json:"reminder_enabled"`
	ReminderChannel *string `json:"reminder_channel"`
}

// DeleteAccountRequest 注销账号请求，需要复核密码
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}
