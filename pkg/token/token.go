package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"tripmate/config"
	"tripmate/pkg/errors"
)

// IdentityKey access token 里用户 public_id 的 claim 名，鉴权中间件按它取身份
const IdentityKey = "uid"

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// 中间件与本包共用一个生成器，保证签名配置一致
var sharedGenerator *jwt.HertzJWTMiddleware

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}
	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// GenerateTokenPair 签发 access/refresh 令牌对，expiresIn 是 access token 剩余秒数
func GenerateTokenPair(userID string) (accessToken, refreshToken string, expiresIn int, err error) {
	if sharedGenerator == nil {
		return "", "", 0, errors.ErrTokenGeneratorNotInitialized
	}

	now := time.Now()
	accessTTL := time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute
	refreshTTL := time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour

	accessToken, err = sign(userID, typeAccess, now, accessTTL)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = sign(userID, typeRefresh, now, refreshTTL)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, int(accessTTL.Seconds()), nil
}

func sign(userID, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwtv5.MapClaims{
		IdentityKey: userID,
		"type":      tokenType,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).
		SignedString([]byte(config.Cfg.JWTSecret))
}

// ValidateRefreshToken 验证 refresh token 并返回其中的用户 public_id
func ValidateRefreshToken(tokenString string) (string, error) {
	parsed, err := jwtv5.ParseWithClaims(tokenString, jwtv5.MapClaims{},
		func(t *jwtv5.Token) (interface{}, error) {
			return []byte(config.Cfg.JWTSecret), nil
		},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return "", errors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", errors.ErrInvalidTokenClaims
	}
	if tokenType, _ := claims["type"].(string); tokenType != typeRefresh {
		return "", errors.ErrInvalidTokenType
	}

	switch uid := claims[IdentityKey].(type) {
	case string:
		return uid, nil
	case float64:
		return fmt.Sprintf("%.0f", uid), nil
	default:
		return "", errors.ErrUserIDNotFound
	}
}
