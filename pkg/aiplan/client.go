package aiplan

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
)

// Request AI 行程生成请求
type Request struct {
	Destination string   // 目的地
	StartDate   string   // YYYY-MM-DD
	EndDate     string   // YYYY-MM-DD
	Companions  string   // 同行人描述
	Interests   []string // 兴趣偏好
	FreeText    string   // 用户补充说明
}

// Client AI 行程生成客户端接口
// 返回值是提供商的原始响应文本，落库后由归一化层统一解包
type Client interface {
	GeneratePlan(ctx context.Context, req Request) (string, error)
}

var (
	aiClient Client
	aiOnce   sync.Once
	aiErr    error
)

// Init 初始化 AI 行程生成客户端
func Init() error {
	aiOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.AIPlanProvider {
		case "gemini":
			aiClient = NewGeminiClient()
		case "mock":
			aiClient = NewMockClient()
		default:
			aiErr = fmt.Errorf("%w: %s", errors.ErrUnsupportedAIPlanProvider, cfg.AIPlanProvider)
		}

		if aiErr != nil {
			logger.Logger.Error("Failed to initialize AI plan client", zap.Error(aiErr))
			return
		}

		logger.Logger.Info("AI plan client initialized successfully",
			zap.String("provider", cfg.AIPlanProvider),
		)
	})

	return aiErr
}

func GetClient() Client {
	if aiClient == nil {
		panic("AI plan client not initialized, call aiplan.Init() first")
	}
	return aiClient
}

func GeneratePlan(ctx context.Context, req Request) (string, error) {
	return GetClient().GeneratePlan(ctx, req)
}
