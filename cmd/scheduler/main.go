package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/internal/queue"
	"tripmate/internal/schedule"
	"tripmate/pkg/logger"
	"tripmate/pkg/metrics"
	mqotel "tripmate/pkg/mq"
	"tripmate/pkg/snowflake"
	"tripmate/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 考虑与 worker 和 server 作区分
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics for scheduler", zap.Error(err))
	}
	if err := mqotel.InitMQMetrics(otelapi.Meter("tripmate-infra")); err != nil {
		logger.Logger.Warn("Failed to initialize mq metrics for scheduler", zap.Error(err))
	}

	// 延迟交换机与投递队列在派发前必须就位
	if err := queue.DeclareTopology(); err != nil {
		logger.Logger.Fatal("Failed to declare MQ topology for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "tripmate-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runPlanScanLoop(ctx)
	go runDispatchLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runPlanScanLoop 周期性扫描可提醒计划并物化提醒任务
// 当前实现：每 30 分钟全量扫描一次
func runPlanScanLoop(ctx context.Context) {
	s := schedule.GetReminderScheduler()

	interval := 30 * time.Minute
	if config.Cfg.Environment == "development" {
		interval = 1 * time.Minute
		logger.Logger.Info("Plan scan loop running in development mode with 1m interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if err := s.ScanPlans(runCtx); err != nil {
				logger.Logger.Error("Plan scan run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runDispatchLoop 周期性把到期任务投递到延迟队列
// 当前实现：每 5 分钟扫描未来 scan window 内到期的任务
func runDispatchLoop(ctx context.Context) {
	s := schedule.GetReminderScheduler()

	interval := 5 * time.Minute
	if config.Cfg.Environment == "development" {
		interval = 1 * time.Minute
		logger.Logger.Info("Dispatch loop running in development mode with 1m interval")
	}

	window := time.Duration(config.Cfg.ReminderScanWindow) * time.Minute

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := s.DispatchDueReminders(runCtx, window); err != nil {
				logger.Logger.Error("Reminder dispatch run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
