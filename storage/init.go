package storage

import (
	"fmt"

	"tripmate/storage/database"
	"tripmate/storage/mq"
	"tripmate/storage/redis"
)

// Init 按依赖顺序拉起存储层：Postgres、Redis、RabbitMQ。
// 任何一个失败都让进程启动失败，三者都是硬依赖。
func Init() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	if err := redis.Init(); err != nil {
		return fmt.Errorf("redis init: %w", err)
	}
	if err := mq.Init(); err != nil {
		return fmt.Errorf("rabbitmq init: %w", err)
	}
	return nil
}
