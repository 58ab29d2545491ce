package repository

import (
	"context"

	"gorm.io/gorm"

	"tripmate/internal/model"
	"tripmate/storage/database"
)

// QuotaRepo AI 额度流水访问层
type QuotaRepo struct {
	db *gorm.DB
}

func NewQuotaRepo() *QuotaRepo {
	return &QuotaRepo{db: database.DB()}
}

func (r *QuotaRepo) Record(ctx context.Context, tx *model.AIPlanTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *QuotaRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.AIPlanTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var txs []model.AIPlanTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}
