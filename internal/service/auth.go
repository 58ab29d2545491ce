package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/internal/cache"
	"tripmate/internal/model"
	"tripmate/internal/model/dto"
	"tripmate/internal/repository"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/pkg/snowflake"
	"tripmate/pkg/token"
	"tripmate/utils"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{
			userRepo: repository.NewUserRepo(),
		}
	})
	return authService
}

type AuthService struct {
	userRepo *repository.UserRepo
}

// Register 邮箱注册，注册成功直接发放令牌对
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenPair, error) {
	if !utils.ValidateEmail(req.Email) {
		return nil, errors.InvalidEmailFormat
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if existing != nil {
		return nil, errors.EmailAlreadyRegistered
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		PublicID:        publicID,
		Email:           req.Email,
		PasswordHash:    passwordHash,
		Nickname:        req.Nickname,
		ReminderEnabled: true,
		ReminderChannel: model.ReminderChannelSMS,
		AIPlanQuota:     config.Cfg.DefaultAIPlanQuota,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Logger.Info("New user registered",
		zap.Int64("public_id", publicID),
	)

	return s.issueTokens(ctx, publicID)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, errors.InvalidCredentials
	}

	return s.issueTokens(ctx, user.PublicID)
}

// Refresh 用 refresh token 换新令牌对，旧的 refresh token 随即失效
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	userIDStr, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.RefreshTokenInvalid
	}

	if !cache.ValidateRefreshTokenExists(ctx, userIDStr, refreshToken) {
		return nil, errors.RefreshTokenInvalid
	}

	var publicID int64
	if _, err := fmt.Sscanf(userIDStr, "%d", &publicID); err != nil {
		return nil, errors.RefreshTokenInvalid
	}

	user, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	return s.issueTokens(ctx, user.PublicID)
}

// Logout 吊销 refresh token
func (s *AuthService) Logout(ctx context.Context, publicID int64) error {
	userIDStr := fmt.Sprintf("%d", publicID)
	if err := cache.DeleteRefreshToken(ctx, userIDStr); err != nil {
		logger.Logger.Warn("Failed to delete refresh token",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, publicID int64) (*dto.TokenPair, error) {
	userIDStr := fmt.Sprintf("%d", publicID)

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// Redis 存不进去不算失败，token 本身已签发
	if err := cache.SetRefreshToken(ctx, userIDStr, refreshToken); err != nil {
		logger.Logger.Warn("Failed to store refresh token in Redis",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
