package cache

import (
	"context"
	"time"

	"tripmate/config"
	"tripmate/storage/redis"
)

// refresh token 白名单。登出或轮换后旧 token 立即失效，
// 单 key 存储也保证了一个用户同时只有一个有效 refresh token。

func refreshTokenKey(userID string) string {
	return redis.Key("token", "refresh", userID)
}

// SetRefreshToken 写入用户当前有效的 refresh token，覆盖旧值
func SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	ttl := time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour
	return redis.Client().Set(ctx, refreshTokenKey(userID), refreshToken, ttl).Err()
}

// GetRefreshToken 读取用户当前的 refresh token
func GetRefreshToken(ctx context.Context, userID string) (string, error) {
	return redis.Client().Get(ctx, refreshTokenKey(userID)).Result()
}

// DeleteRefreshToken 吊销 refresh token，登出和注销时调用
func DeleteRefreshToken(ctx context.Context, userID string) error {
	return redis.Client().Del(ctx, refreshTokenKey(userID)).Err()
}

// ValidateRefreshTokenExists 校验 token 是否仍是该用户的当前 token
func ValidateRefreshTokenExists(ctx context.Context, userID, refreshToken string) bool {
	stored, err := GetRefreshToken(ctx, userID)
	return err == nil && stored == refreshToken
}
