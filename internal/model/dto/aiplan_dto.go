package dto

import "encoding/json"

// ========== AI 行程生成 DTO ==========

// GeneratePlanRequest AI 生成请求，字段名与移动端一致
type GeneratePlanRequest struct {
	Query     string `json:"query" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`

	FlightInfo        json.RawMessage `json:"flightInfo"`
	AccommodationInfo json.RawMessage `json:"accommodationInfo"`

	// 高频生成触发滑块验证时由前端带上
	CaptchaVerifyParam string `json:"captcha_verify_param"`
}

// QuotaResponse 额度查询响应
type QuotaResponse struct {
	Remaining       int                `json:"remaining"`
	SliderRequired  bool               `json:"slider_required"`
	TodayGenerated  int                `json:"today_generated"`
	SliderThreshold int                `json:"slider_threshold"`
	Transactions    []QuotaTransaction `json:"transactions"`
}

// QuotaTransaction 额度流水条目
type QuotaTransaction struct {
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Amount    int    `json:"amount"`
	CreatedAt string `json:"created_at"`
}
