package slider

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
)

// Client 滑块验证客户端接口
// AI 行程生成的防刷闸门：同一用户短时间高频生成时要求先过滑块
type Client interface {
	// Verify 验证滑块 token
	// captchaVerifyParam: 前端滑块组件返回的验证参数
	// remoteIp: 用户 IP，仅用于日志
	// scene: 业务场景（SceneId）
	Verify(ctx context.Context, captchaVerifyParam, remoteIp, scene string) (bool, error)
}

var (
	sliderClient Client
	sliderOnce   sync.Once
	sliderErr    error
)

// Init 初始化滑块验证客户端
func Init() error {
	sliderOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.CaptchaProvider {
		case "aliyun":
			sliderClient, sliderErr = NewAliyunClient()
		case "none":
			sliderClient = &MockClient{}
			sliderErr = nil
		default:
			sliderErr = fmt.Errorf("%w: %s", errors.ErrUnsupportedCaptchaProvider, cfg.CaptchaProvider)
		}

		if sliderErr != nil {
			logger.Logger.Error("Failed to initialize slider client", zap.Error(sliderErr))
			return
		}

		logger.Logger.Info("Slider client initialized successfully",
			zap.String("provider", cfg.CaptchaProvider),
		)
	})

	return sliderErr
}

func GetClient() Client {
	if sliderClient == nil {
		panic("Slider client not initialized, call slider.Init() first")
	}
	return sliderClient
}

func Verify(ctx context.Context, captchaVerifyParam, remoteIp, scene string) (bool, error) {
	return GetClient().Verify(ctx, captchaVerifyParam, remoteIp, scene)
}
