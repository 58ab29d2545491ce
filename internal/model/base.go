package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
}

// JSONB 对象型 JSONB 列
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, j)
}

// RawJSONB 任意形态的 JSONB 列。
// plan_data 历史上既有 JSON 字符串也有对象，这里不做结构假设，原样存取。
type RawJSONB json.RawMessage

func (r RawJSONB) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

func (r *RawJSONB) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan RawJSONB value")
	}
	buf := make([]byte, len(bytes))
	copy(buf, bytes)
	*r = buf
	return nil
}

func (r RawJSONB) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSONB) UnmarshalJSON(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	*r = buf
	return nil
}

// Decoded 把 JSONB 列还原为 interface{}（字符串、对象或 nil）
func (r RawJSONB) Decoded() interface{} {
	if len(r) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(r, &v); err != nil {
		return nil
	}
	return v
}
