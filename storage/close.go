package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tripmate/pkg/logger"
	"tripmate/storage/database"
	"tripmate/storage/mq"
	"tripmate/storage/redis"
)

// Close 关闭全部存储连接。顺序与 Init 相反：
// 先断 MQ 让消费者退出，再断缓存，最后关数据库。
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	closers := []struct {
		name  string
		close func(context.Context) error
	}{
		{"rabbitmq", mq.Close},
		{"redis", redis.Close},
		{"database", database.Close},
	}

	for _, c := range closers {
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage connection",
				zap.String("component", c.name),
				zap.Error(err),
			)
			continue
		}
		logger.Logger.Info("Storage connection closed", zap.String("component", c.name))
	}
}
