package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	ri "github.com/redis/go-redis/v9"

	"tripmate/storage/redis"
)

const (
	// 空值缓存标识
	emptyValueFlag = "__EMPTY__"
	// 空值缓存TTL，较短时间避免长期占用
	emptyValueTTL = 5 * time.Minute
	// 熔断恢复期的随机延迟上限，打散回源洪峰
	recoveryJitterMax = 200 * time.Millisecond
)

// ProtectedCache 带保护的缓存包装器
// 空值写入防穿透，熔断器防 Redis 故障时请求堆积
type ProtectedCache struct {
	keyPrefix string
	ttl       time.Duration
	emptyTTL  time.Duration
	breaker   *CircuitBreaker
}

// NewProtectedCache 创建受保护的缓存实例
func NewProtectedCache(keyPrefix string, ttl time.Duration) *ProtectedCache {
	return &ProtectedCache{
		keyPrefix: keyPrefix,
		ttl:       ttl,
		emptyTTL:  emptyValueTTL,
		breaker:   NewCircuitBreaker(keyPrefix, 5, 30*time.Second),
	}
}

// Set 设置缓存（带空值保护）
func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	cacheKey := redis.Key(pc.keyPrefix, key)

	var data string
	var ttl time.Duration

	if value == nil {
		data = emptyValueFlag
		ttl = pc.emptyTTL
	} else {
		dataBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		data = string(dataBytes)
		ttl = pc.ttl
	}

	return pc.breaker.Call(func() error {
		return redis.Client().Set(ctx, cacheKey, data, ttl).Err()
	})
}

// Get 获取缓存，返回是否命中。空值命中时 dest 保持零值
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	cacheKey := redis.Key(pc.keyPrefix, key)

	if err := pc.recoveryJitter(ctx); err != nil {
		return false, err
	}

	var data string
	err := pc.breaker.Call(func() error {
		var opErr error
		data, opErr = redis.Client().Get(ctx, cacheKey).Result()
		if opErr == ri.Nil {
			// 未命中不算缓存故障
			data = ""
			return nil
		}
		return opErr
	})
	if err != nil {
		return false, fmt.Errorf("failed to get cache: %w", err)
	}
	if data == "" {
		return false, nil
	}

	if data == emptyValueFlag {
		return true, nil
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, nil
}

// Delete 删除缓存
func (pc *ProtectedCache) Delete(ctx context.Context, key string) error {
	cacheKey := redis.Key(pc.keyPrefix, key)
	return pc.breaker.Call(func() error {
		return redis.Client().Del(ctx, cacheKey).Err()
	})
}

// BatchDelete 批量删除缓存
func (pc *ProtectedCache) BatchDelete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	return pc.breaker.Call(func() error {
		pipe := redis.Client().Pipeline()
		for _, key := range keys {
			pipe.Del(ctx, redis.Key(pc.keyPrefix, key))
		}
		_, err := pipe.Exec(ctx)
		return err
	})
}

// recoveryJitter 半开恢复期加随机延迟，避免所有请求同时打到刚恢复的 Redis
func (pc *ProtectedCache) recoveryJitter(ctx context.Context) error {
	if pc.breaker.GetState() != StateHalfOpen {
		return nil
	}

	delay := time.Duration(rand.Intn(int(recoveryJitterMax)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// 预定义的缓存实例
var (
	// 归一化行程缓存，plan 保存或删除时失效
	ItineraryProtectedCache = NewProtectedCache("plan:itinerary", 1*time.Hour)

	// 用户资料缓存
	UserProfileProtectedCache = NewProtectedCache("user:profile", 24*time.Hour)

	// 天气查询缓存，坐标粒度，预报本身三小时一个点
	WeatherProtectedCache = NewProtectedCache("weather", 30*time.Minute)
)
