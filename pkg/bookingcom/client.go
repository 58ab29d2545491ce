package bookingcom

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/logger"
)

// HotelSearchParams 坐标酒店搜索参数
type HotelSearchParams struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Currency       string  `json:"currency"`
	CheckinDate    string  `json:"checkin_date"`
	CheckoutDate   string  `json:"checkout_date"`
	AdultsNumber   int     `json:"adults_number"`
	ChildrenNumber int     `json:"children_number"`
}

// Client 酒店搜索客户端接口
type Client interface {
	// SearchByCoordinates 按坐标搜索酒店，返回原始 result 数组
	SearchByCoordinates(ctx context.Context, params HotelSearchParams) (json.RawMessage, error)
}

var (
	bookingClient Client
	bookingOnce   sync.Once
)

// Init 初始化酒店搜索客户端
func Init() error {
	bookingOnce.Do(func() {
		cfg := config.Cfg

		if cfg.BookingAPIKey == "" {
			bookingClient = NewMockClient()
			logger.Logger.Warn("Booking API key missing, using mock hotel client")
			return
		}

		bookingClient = NewAPIClient()
		logger.Logger.Info("Booking client initialized successfully",
			zap.String("base_url", cfg.BookingBaseURL),
		)
	})

	return nil
}

func GetClient() Client {
	if bookingClient == nil {
		panic("Booking client not initialized, call bookingcom.Init() first")
	}
	return bookingClient
}

func SearchByCoordinates(ctx context.Context, params HotelSearchParams) (json.RawMessage, error) {
	return GetClient().SearchByCoordinates(ctx, params)
}
