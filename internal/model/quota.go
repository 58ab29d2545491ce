package model

// TransactionType 额度流水类型枚举
type TransactionType string

const (
	TransactionTypeGrant  TransactionType = "grant"  // 发放
	TransactionTypeDeduct TransactionType = "deduct" // 扣减
)

// AIPlanTransaction AI 生成额度流水
type AIPlanTransaction struct {
	BaseModel
	UserID          int64           `gorm:"not null;index:idx_aiplan_transactions_user" json:"user_id"`
	TransactionType TransactionType `gorm:"type:varchar(16);not null" json:"transaction_type"`
	Reason          string          `gorm:"type:varchar(32);not null" json:"reason"`
	Amount          int             `gorm:"not null" json:"amount"`
	BalanceAfter    int             `gorm:"not null" json:"balance_after"`
}

// TableName 指定表名
func (AIPlanTransaction) TableName() string {
	return "aiplan_transactions"
}
