package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tripmate/internal/model"
	"tripmate/storage/database"
)

// PlanRepo 旅行计划表访问层
type PlanRepo struct {
	db *gorm.DB
}

func NewPlanRepo() *PlanRepo {
	return &PlanRepo{db: database.DB()}
}

func (r *PlanRepo) Create(ctx context.Context, plan *model.TravelPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *PlanRepo) Save(ctx context.Context, plan *model.TravelPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *PlanRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.TravelPlan, error) {
	var plan model.TravelPlan
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByUser 用户自己的计划，更新时间倒序
func (r *PlanRepo) ListByUser(ctx context.Context, userID int64) ([]model.TravelPlan, error) {
	var plans []model.TravelPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&plans).Error
	return plans, err
}

// LatestByUser 用户最近更新的一条计划
func (r *PlanRepo) LatestByUser(ctx context.Context, userID int64) (*model.TravelPlan, error) {
	var plan model.TravelPlan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListRemindable 提醒扫描用，只取开启了提醒渠道的用户的计划
func (r *PlanRepo) ListRemindable(ctx context.Context) ([]model.TravelPlan, error) {
	var plans []model.TravelPlan
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = travel_plans.user_id AND users.deleted_at IS NULL").
		Where("users.reminder_enabled = ?", true).
		Where("users.reminder_channel <> ?", model.ReminderChannelNone).
		Find(&plans).Error
	return plans, err
}

func (r *PlanRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TravelPlan{}).Error
}

// DeleteByUser 删除用户全部计划，注销账号时使用
func (r *PlanRepo) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.TravelPlan{}).Error
}

// ========== 共享关系 ==========

func (r *PlanRepo) CreateShare(ctx context.Context, share *model.PlanShare) error {
	return r.db.WithContext(ctx).Create(share).Error
}

func (r *PlanRepo) DeleteShare(ctx context.Context, planID, sharedWithID int64) error {
	return r.db.WithContext(ctx).
		Where("plan_id = ? AND shared_with_id = ?", planID, sharedWithID).
		Delete(&model.PlanShare{}).Error
}

func (r *PlanRepo) GetShare(ctx context.Context, planID, sharedWithID int64) (*model.PlanShare, error) {
	var share model.PlanShare
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND shared_with_id = ?", planID, sharedWithID).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// ListShareMembers 计划被共享到的用户，只取开启了短信提醒的
func (r *PlanRepo) ListShareMembers(ctx context.Context, planID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN plan_shares ON plan_shares.shared_with_id = users.id").
		Where("plan_shares.plan_id = ?", planID).
		Where("users.reminder_enabled = ?", true).
		Where("users.reminder_channel = ?", model.ReminderChannelSMS).
		Where("users.phone <> ''").
		Find(&users).Error
	return users, err
}

// ListSharedWith 共享给该用户的计划
func (r *PlanRepo) ListSharedWith(ctx context.Context, userID int64) ([]model.TravelPlan, []model.PlanShare, error) {
	var shares []model.PlanShare
	if err := r.db.WithContext(ctx).Where("shared_with_id = ?", userID).Find(&shares).Error; err != nil {
		return nil, nil, err
	}
	if len(shares) == 0 {
		return nil, nil, nil
	}

	planIDs := make([]int64, 0, len(shares))
	for _, s := range shares {
		planIDs = append(planIDs, s.PlanID)
	}

	var plans []model.TravelPlan
	if err := r.db.WithContext(ctx).Where("id IN ?", planIDs).Find(&plans).Error; err != nil {
		return nil, nil, err
	}
	return plans, shares, nil
}
