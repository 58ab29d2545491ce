package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripmate/internal/model"
	"tripmate/storage/database"
)

// ReminderRepo 提醒任务表访问层
type ReminderRepo struct {
	db *gorm.DB
}

func NewReminderRepo() *ReminderRepo {
	return &ReminderRepo{db: database.DB()}
}

// CreateIfAbsent 按 (plan_id, day_index, activity_index, kind) 幂等创建，
// 槽位已存在时不报错且返回 false
func (r *ReminderRepo) CreateIfAbsent(ctx context.Context, task *model.ReminderTask) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "plan_id"},
				{Name: "day_index"},
				{Name: "activity_index"},
				{Name: "kind"},
			},
			DoNothing: true,
		}).
		Create(task)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ReminderRepo) GetByTaskCode(ctx context.Context, taskCode int64) (*model.ReminderTask, error) {
	var task model.ReminderTask
	err := r.db.WithContext(ctx).Where("task_code = ?", taskCode).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListDueInWindow 扫描窗口内待投递的任务
func (r *ReminderRepo) ListDueInWindow(ctx context.Context, from, to time.Time) ([]model.ReminderTask, error) {
	var tasks []model.ReminderTask
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			model.ReminderTaskStatusPending, from, to).
		Order("scheduled_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// MarkProcessing pending -> processing，返回是否抢到该任务
func (r *ReminderRepo) MarkProcessing(ctx context.Context, taskID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.ReminderTask{}).
		Where("id = ? AND status = ?", taskID, model.ReminderTaskStatusPending).
		Update("status", model.ReminderTaskStatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ReminderRepo) MarkResult(ctx context.Context, taskID int64, status model.ReminderTaskStatus) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.ReminderTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": &now,
		}).Error
}

func (r *ReminderRepo) IncrementRetry(ctx context.Context, taskID int64) error {
	return r.db.WithContext(ctx).Model(&model.ReminderTask{}).
		Where("id = ?", taskID).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
}

// DeleteByPlan 计划被删除或重写时清掉全部提醒任务。
// 已投递的行也要删：它们占着槽位唯一索引，留下会挡住重建的同槽位任务。
func (r *ReminderRepo) DeleteByPlan(ctx context.Context, planID int64) error {
	return r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Delete(&model.ReminderTask{}).Error
}

// ListByUser 用户的提醒任务，时间倒序
func (r *ReminderRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.ReminderTask, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var tasks []model.ReminderTask
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}
