package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripmate/config"
	"tripmate/storage/redis"
)

// AI 生成防刷：
// 1. 每次生成给当日计数 +1
// 2. 计数超过阈值后，生成接口返回 429 + slider_required
// 3. 前端过滑块，后端校验第三方 token 后发一个短期通行 token
// 4. 前端带通行 token 重新请求生成

const (
	sliderPrefix   = "slider"
	genCountPrefix = "aiplan:daily"
)

// IncrDailyGenCount 当日生成计数 +1，返回累加后的值
func IncrDailyGenCount(ctx context.Context, userID int64, day string) (int64, error) {
	key := redis.Key(genCountPrefix, day, fmt.Sprintf("%d", userID))

	count, err := redis.Client().Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// 首次计数时设置过期，跨午夜的 key 自然消亡
		redis.Client().Expire(ctx, key, 48*time.Hour)
	}
	return count, nil
}

// GetDailyGenCount 查询当日生成计数
func GetDailyGenCount(ctx context.Context, userID int64, day string) (int64, error) {
	key := redis.Key(genCountPrefix, day, fmt.Sprintf("%d", userID))
	count, err := redis.Client().Get(ctx, key).Int64()
	if err != nil {
		return 0, nil
	}
	return count, nil
}

// SetSliderPassToken 滑块验证通过后发放通行 token
// Key: tmate:slider:pass:{userID}
func SetSliderPassToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.New().String()
	key := redis.Key(sliderPrefix, "pass", fmt.Sprintf("%d", userID))
	ttl := time.Duration(config.Cfg.CaptchaExpireSeconds) * time.Second

	if err := redis.Client().Set(ctx, key, token, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeSliderPassToken 校验并消费通行 token，一次有效
func ConsumeSliderPassToken(ctx context.Context, userID int64, token string) bool {
	key := redis.Key(sliderPrefix, "pass", fmt.Sprintf("%d", userID))
	stored, err := redis.Client().Get(ctx, key).Result()
	if err != nil || stored != token {
		return false
	}
	redis.Client().Del(ctx, key)
	return true
}
