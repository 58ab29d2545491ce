package amadeus

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/logger"
)

// FlightSearchParams 航班搜索参数，与移动端请求体字段一一对应
type FlightSearchParams struct {
	OriginLocationCode      string `json:"originLocationCode"`
	DestinationLocationCode string `json:"destinationLocationCode"`
	DepartureDate           string `json:"departureDate"`
	ReturnDate              string `json:"returnDate,omitempty"`
	Adults                  int    `json:"adults"`
	CurrencyCode            string `json:"currencyCode"`
	Max                     int    `json:"max"`
	TravelClass             string `json:"travelClass,omitempty"`
	NonStop                 bool   `json:"nonStop"`
}

// Client 航班搜索客户端接口
type Client interface {
	// FlightOffers 搜索航班报价，返回 Amadeus 原始 data 数组
	FlightOffers(ctx context.Context, params FlightSearchParams) (json.RawMessage, error)

	// SearchLocations 机场/城市关键词联想
	// subType 形如 "AIRPORT,CITY"
	SearchLocations(ctx context.Context, subType, keyword string) (json.RawMessage, error)
}

var (
	amadeusClient Client
	amadeusOnce   sync.Once
)

// Init 初始化航班搜索客户端
func Init() error {
	amadeusOnce.Do(func() {
		cfg := config.Cfg

		if cfg.AmadeusClientID == "" || cfg.AmadeusClientSecret == "" {
			amadeusClient = NewMockClient()
			logger.Logger.Warn("Amadeus credentials missing, using mock flight client")
			return
		}

		amadeusClient = NewAPIClient()
		logger.Logger.Info("Amadeus client initialized successfully",
			zap.String("base_url", cfg.AmadeusBaseURL),
		)
	})

	return nil
}

func GetClient() Client {
	if amadeusClient == nil {
		panic("Amadeus client not initialized, call amadeus.Init() first")
	}
	return amadeusClient
}

func FlightOffers(ctx context.Context, params FlightSearchParams) (json.RawMessage, error) {
	return GetClient().FlightOffers(ctx, params)
}

func SearchLocations(ctx context.Context, subType, keyword string) (json.RawMessage, error) {
	return GetClient().SearchLocations(ctx, subType, keyword)
}
