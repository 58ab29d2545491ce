package service

import (
	"context"
	"fmt"
	"sync"

	"tripmate/internal/model"
	"tripmate/internal/repository"
	"tripmate/pkg/errors"
)

var (
	reminderService *ReminderService
	reminderOnce    sync.Once
)

func Reminder() *ReminderService {
	reminderOnce.Do(func() {
		reminderService = &ReminderService{
			userRepo:     repository.NewUserRepo(),
			reminderRepo: repository.NewReminderRepo(),
		}
	})
	return reminderService
}

type ReminderService struct {
	userRepo     *repository.UserRepo
	reminderRepo *repository.ReminderRepo
}

// List 用户的提醒任务，最近的在前
func (s *ReminderService) List(ctx context.Context, userPublicID int64, limit int) ([]model.ReminderTask, error) {
	user, err := s.userRepo.GetByPublicID(ctx, userPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.reminderRepo.ListByUser(ctx, user.ID, limit)
}
