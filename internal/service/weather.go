package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripmate/internal/cache"
	"tripmate/internal/model/dto"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
	"tripmate/pkg/weather"
	"tripmate/utils"
)

var (
	weatherService *WeatherService
	weatherOnce    sync.Once
)

func Weather() *WeatherService {
	weatherOnce.Do(func() {
		weatherService = &WeatherService{}
	})
	return weatherService
}

type WeatherService struct{}

// Forecast 按坐标取 5 日预报并按日聚合。
// 每天取正午前后最近的预报点作为当日代表值。
func (s *WeatherService) Forecast(ctx context.Context, lat, lon float64) ([]dto.DayWeather, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, errors.InvalidCoordinates
	}

	cacheKey := fmt.Sprintf("%.2f:%.2f", lat, lon)

	var cached []dto.DayWeather
	if hit, err := cache.WeatherProtectedCache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	forecast, err := weather.FiveDayForecast(ctx, lat, lon)
	if err != nil {
		logger.Logger.Error("Weather forecast request failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return nil, errors.WeatherUnavailable
	}

	days := aggregateByDay(forecast)

	if err := cache.WeatherProtectedCache.Set(ctx, cacheKey, days); err != nil {
		logger.Logger.Warn("Failed to cache weather",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}

	return days, nil
}

// aggregateByDay 把 3 小时粒度的预报点折叠成每日摘要
func aggregateByDay(forecast *weather.Forecast) []dto.DayWeather {
	loc := utils.PlanLocation()

	type candidate struct {
		entry    weather.Entry
		distance time.Duration
	}

	best := make(map[string]candidate)
	var order []string

	for _, entry := range forecast.List {
		t := time.Unix(entry.Dt, 0).In(loc)
		date := t.Format("2006-01-02")

		noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc)
		distance := t.Sub(noon)
		if distance < 0 {
			distance = -distance
		}

		prev, ok := best[date]
		if !ok {
			order = append(order, date)
		}
		if !ok || distance < prev.distance {
			best[date] = candidate{entry: entry, distance: distance}
		}
	}

	days := make([]dto.DayWeather, 0, len(order))
	for _, date := range order {
		entry := best[date].entry

		dw := dto.DayWeather{
			Date:     date,
			Temp:     entry.Main.Temp,
			Humidity: entry.Main.Humidity,
		}
		if len(entry.Weather) > 0 {
			dw.Main = entry.Weather[0].Main
			dw.Description = entry.Weather[0].Description
		}
		days = append(days, dw)
	}

	return days
}
