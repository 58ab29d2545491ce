package model

// TravelPlan 旅行计划模型。
// plan_data / itinerary_schedules 保留写入时的原始形态，
// 读取方统一经 planparse.Normalize 解包，存储层不做格式修正。
type TravelPlan struct {
	BaseModel
	PublicID int64  `gorm:"uniqueIndex;not null" json:"plan_id"`
	UserID   int64  `gorm:"not null;index:idx_travel_plans_user" json:"user_id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`

	PlanData           RawJSONB `gorm:"type:jsonb" json:"plan_data,omitempty"`
	ItinerarySchedules *string  `gorm:"type:text" json:"itinerary_schedules,omitempty"`

	FlightInfo RawJSONB `gorm:"type:jsonb" json:"flight_info,omitempty"`
	AccmoInfo  RawJSONB `gorm:"type:jsonb" json:"accmo_info,omitempty"`

	PaidPlan bool `gorm:"not null;default:false" json:"paid_plan"`
}

// TableName 指定表名
func (TravelPlan) TableName() string {
	return "travel_plans"
}

// ToRecord 组装归一化层的输入记录
func (p *TravelPlan) ToRecord() map[string]interface{} {
	record := map[string]interface{}{
		"name": p.Name,
	}
	if p.ItinerarySchedules != nil && *p.ItinerarySchedules != "" {
		record["itinerary_schedules"] = *p.ItinerarySchedules
	} else if v := p.PlanData.Decoded(); v != nil {
		record["plan_data"] = v
	}
	return record
}

// PlanShare 计划共享关系。被共享者以只读方式看到他人的计划。
type PlanShare struct {
	BaseModel
	PlanID       int64 `gorm:"not null;index:idx_plan_shares_plan;uniqueIndex:idx_plan_shares_pair" json:"plan_id"`
	OwnerID      int64 `gorm:"not null" json:"owner_id"`
	SharedWithID int64 `gorm:"not null;index:idx_plan_shares_target;uniqueIndex:idx_plan_shares_pair" json:"shared_with_id"`
}

// TableName 指定表名
func (PlanShare) TableName() string {
	return "plan_shares"
}
