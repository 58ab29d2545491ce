package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tripmate/pkg/planparse"
)

// ========== Travel Plan 相关 DTO ==========

// CheckPlanRequest 单个计划查询请求
type CheckPlanRequest struct {
	PlanID int64 `json:"plan_id" binding:"required"`
}

// SavePlanRequest 移动端保存请求。
// 历史客户端字段名不统一：标题是 title 或 name，行程体是 data 或 plans，
// 航班/住宿是 flight_info/accmo_info 或驼峰的 flightInfos/accommodationInfos，
// 付费标记有 true 也有 1。全都收下，服务层做归一。
type SavePlanRequest struct {
	PlanID *int64 `json:"plan_id"`
	Title  string `json:"title"`
	Name   string `json:"name"`

	Data  json.RawMessage `json:"data"`
	Plans json.RawMessage `json:"plans"`

	FlightInfo         json.RawMessage `json:"flight_info"`
	FlightInfos        json.RawMessage `json:"flightInfos"`
	AccmoInfo          json.RawMessage `json:"accmo_info"`
	AccommodationInfos json.RawMessage `json:"accommodationInfos"`

	PaidPlan *FlexBool `json:"paid_plan"`
}

// Flight 两种字段名里取先出现的航班信息
func (r SavePlanRequest) Flight() json.RawMessage {
	if len(r.FlightInfo) > 0 {
		return r.FlightInfo
	}
	return r.FlightInfos
}

// Accommodation 两种字段名里取先出现的住宿信息
func (r SavePlanRequest) Accommodation() json.RawMessage {
	if len(r.AccmoInfo) > 0 {
		return r.AccmoInfo
	}
	return r.AccommodationInfos
}

// FlexBool 宽松布尔，true/false、1/0、"1"/"0" 都认
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.TrimSpace(string(data)), `"`) {
	case "true", "1":
		*b = true
	case "false", "0", "", "null":
		*b = false
	default:
		return fmt.Errorf("cannot parse %s as bool", string(data))
	}
	return nil
}

// LoadPlanRequest 移动端加载请求
type LoadPlanRequest struct {
	Newest bool `json:"newest"`
}

// DeletePlanRequest 删除计划请求
type DeletePlanRequest struct {
	PlanID int64 `json:"plan_id" binding:"required"`
}

// SharePlanRequest 共享计划请求
type SharePlanRequest struct {
	PlanID int64  `json:"plan_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

// UnsharePlanRequest 取消共享请求
type UnsharePlanRequest struct {
	PlanID int64  `json:"plan_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

// PlanDetail 单个计划的完整视图，行程体已经过归一化
type PlanDetail struct {
	PlanID         int64               `json:"plan_id"`
	Name           string              `json:"name"`
	Itinerary      planparse.Itinerary `json:"itinerary"`
	FlightInfo     json.RawMessage     `json:"flight_info,omitempty"`
	AccmoInfo      json.RawMessage     `json:"accmo_info,omitempty"`
	PaidPlan       bool                `json:"paid_plan"`
	LastUpdated    time.Time           `json:"last_updated"`
	IsSharedWithMe bool                `json:"is_shared_with_me"`
	OriginalOwner  string              `json:"original_owner,omitempty"`
	Status         string              `json:"status"`
	StatusLabel    string              `json:"status_label"`
	StartDate      string              `json:"start_date,omitempty"`
	EndDate        string              `json:"end_date,omitempty"`

	// 行程里第一个带坐标的活动，客户端用它预取天气
	WeatherAnchor *WeatherAnchor `json:"weather_anchor,omitempty"`
}

// WeatherAnchor 天气预取锚点坐标
type WeatherAnchor struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// PlanSummary 列表项
type PlanSummary struct {
	PlanID         int64     `json:"plan_id"`
	Name           string    `json:"name"`
	LastUpdated    time.Time `json:"last_updated"`
	PaidPlan       bool      `json:"paid_plan"`
	IsSharedWithMe bool      `json:"is_shared_with_me"`
	OriginalOwner  string    `json:"original_owner,omitempty"`
	Status         string    `json:"status,omitempty"`
	StatusLabel    string    `json:"status_label,omitempty"`
	StartDate      string    `json:"start_date,omitempty"`
	EndDate        string    `json:"end_date,omitempty"`
}
