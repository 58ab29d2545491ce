package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	otelapi "go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/internal/queue"
	"tripmate/pkg/logger"
	"tripmate/pkg/metrics"
	mqotel "tripmate/pkg/mq"
	"tripmate/pkg/sms"
	"tripmate/pkg/snowflake"
	"tripmate/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics for worker", zap.Error(err))
	}
	if err := mqotel.InitMQMetrics(otelapi.Meter("tripmate-infra")); err != nil {
		logger.Logger.Warn("Failed to initialize mq metrics for worker", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS service", zap.Error(err))
		logger.Logger.Info("SMS service will be disabled, SMS features may not work")
	}

	// 消费前确保队列与绑定存在
	if err := queue.DeclareTopology(); err != nil {
		logger.Logger.Fatal("Failed to declare MQ topology", zap.Error(err))
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", "tripmate-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	//启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
