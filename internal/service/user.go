package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tripmate/internal/cache"
	"tripmate/internal/model"
	"tripmate/internal/model/dto"
	"tripmate/internal/repository"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/utils"
)

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = &UserService{
			userRepo:     repository.NewUserRepo(),
			planRepo:     repository.NewPlanRepo(),
			reminderRepo: repository.NewReminderRepo(),
		}
	})
	return userService
}

type UserService struct {
	userRepo     *repository.UserRepo
	planRepo     *repository.PlanRepo
	reminderRepo *repository.ReminderRepo
}

// Profile 查询用户资料，带缓存
func (s *UserService) Profile(ctx context.Context, publicID int64) (*dto.UserProfile, error) {
	cacheKey := fmt.Sprintf("%d", publicID)

	var profile dto.UserProfile
	if hit, err := cache.UserProfileProtectedCache.Get(ctx, cacheKey, &profile); err == nil && hit {
		return &profile, nil
	}

	user, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	profile = dto.UserProfile{
		UserID:          user.PublicID,
		Email:           user.Email,
		Nickname:        user.Nickname,
		Phone:           user.Phone,
		ReminderEnabled: user.ReminderEnabled,
		ReminderChannel: string(user.ReminderChannel),
		AIPlanQuota:     user.AIPlanQuota,
	}

	if err := cache.UserProfileProtectedCache.Set(ctx, cacheKey, profile); err != nil {
		logger.Logger.Warn("Failed to cache user profile",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
	}

	return &profile, nil
}

// UpdateProfile 更新资料，nil 字段不动
func (s *UserService) UpdateProfile(ctx context.Context, publicID int64, req dto.UpdateProfileRequest) (*dto.UserProfile, error) {
	user, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	fields := make(map[string]interface{})
	if req.Nickname != nil {
		fields["nickname"] = *req.Nickname
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.ReminderEnabled != nil {
		fields["reminder_enabled"] = *req.ReminderEnabled
	}
	if req.ReminderChannel != nil {
		switch model.ReminderChannel(*req.ReminderChannel) {
		case model.ReminderChannelSMS, model.ReminderChannelNone:
			fields["reminder_channel"] = *req.ReminderChannel
		default:
			return nil, errors.ReminderChannelInvalid
		}
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := cache.UserProfileProtectedCache.Delete(ctx, fmt.Sprintf("%d", publicID)); err != nil {
		logger.Logger.Warn("Failed to invalidate profile cache",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
	}

	return s.Profile(ctx, publicID)
}

// DeleteAccount 注销账号，复核密码后级联清理计划与提醒
func (s *UserService) DeleteAccount(ctx context.Context, publicID int64, password string) error {
	user, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return errors.UserNotFound
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return errors.InvalidCredentials
	}

	plans, err := s.planRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to list user plans: %w", err)
	}

	for i := range plans {
		if err := s.reminderRepo.DeleteByPlan(ctx, plans[i].ID); err != nil {
			logger.Logger.Warn("Failed to delete plan reminders",
				zap.Int64("plan_id", plans[i].PublicID),
				zap.Error(err),
			)
		}
		if err := cache.ClearPlanReminderMarks(ctx, plans[i].ID); err != nil {
			logger.Logger.Warn("Failed to clear reminder slot marks",
				zap.Int64("plan_id", plans[i].PublicID),
				zap.Error(err),
			)
		}
		if err := cache.InvalidateItinerary(ctx, plans[i].PublicID); err != nil {
			logger.Logger.Warn("Failed to invalidate itinerary cache",
				zap.Int64("plan_id", plans[i].PublicID),
				zap.Error(err),
			)
		}
	}

	if err := s.planRepo.DeleteByUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user plans: %w", err)
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	userIDStr := fmt.Sprintf("%d", publicID)
	if err := cache.DeleteRefreshToken(ctx, userIDStr); err != nil {
		logger.Logger.Warn("Failed to delete refresh token",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}
	if err := cache.UserProfileProtectedCache.Delete(ctx, userIDStr); err != nil {
		logger.Logger.Warn("Failed to invalidate profile cache",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}

	logger.Logger.Info("User account deleted",
		zap.Int64("public_id", publicID),
		zap.Int("plan_count", len(plans)),
	)

	return nil
}
