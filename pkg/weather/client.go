package weather

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/logger"
)

// Forecast 5 日预报，结构与移动端渲染字段对齐
type Forecast struct {
	City City    `json:"city"`
	List []Entry `json:"list"`
}

type City struct {
	Name string `json:"name"`
}

// Entry 单个 3 小时预报点
type Entry struct {
	Dt      int64       `json:"dt"`
	Main    Main        `json:"main"`
	Weather []Condition `json:"weather"`
}

type Main struct {
	Temp     float64 `json:"temp"`
	Humidity int     `json:"humidity"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Location 地理编码结果
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Country   string  `json:"country"`
}

// Client 天气客户端接口
type Client interface {
	// FiveDayForecast 按坐标取 5 日预报
	FiveDayForecast(ctx context.Context, lat, lon float64) (*Forecast, error)

	// Geocode 城市名转坐标，用于酒店搜索的目的地解析
	Geocode(ctx context.Context, city string) (*Location, error)
}

var (
	weatherClient Client
	weatherOnce   sync.Once
)

// Init 初始化天气客户端
func Init() error {
	weatherOnce.Do(func() {
		cfg := config.Cfg

		if cfg.WeatherAPIKey == "" {
			weatherClient = NewMockClient()
			logger.Logger.Warn("Weather API key missing, using mock weather client")
			return
		}

		weatherClient = NewOpenWeatherClient()
		logger.Logger.Info("Weather client initialized successfully",
			zap.String("base_url", cfg.WeatherBaseURL),
		)
	})

	return nil
}

func GetClient() Client {
	if weatherClient == nil {
		panic("Weather client not initialized, call weather.Init() first")
	}
	return weatherClient
}

func FiveDayForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	return GetClient().FiveDayForecast(ctx, lat, lon)
}

func Geocode(ctx context.Context, city string) (*Location, error) {
	return GetClient().Geocode(ctx, city)
}
