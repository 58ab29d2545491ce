package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/errors"
	"tripmate/pkg/logger"
)

// OpenWeatherClient 调用 OpenWeather 的预报与地理编码接口
type OpenWeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewOpenWeatherClient() *OpenWeatherClient {
	cfg := config.Cfg
	return &OpenWeatherClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.WeatherBaseURL, "/"),
		apiKey:     cfg.WeatherAPIKey,
	}
}

// FiveDayForecast 按坐标取 5 日预报，摄氏度，韩文描述
func (c *OpenWeatherClient) FiveDayForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	query.Set("lang", "kr")

	raw, err := c.get(ctx, "/data/2.5/forecast", query)
	if err != nil {
		return nil, err
	}

	var forecast Forecast
	if err := json.Unmarshal(raw, &forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	return &forecast, nil
}

// Geocode 城市名转坐标，取第一个匹配
func (c *OpenWeatherClient) Geocode(ctx context.Context, city string) (*Location, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("limit", "1")
	query.Set("appid", c.apiKey)

	raw, err := c.get(ctx, "/geo/1.0/direct", query)
	if err != nil {
		return nil, err
	}

	var locations []Location
	if err := json.Unmarshal(raw, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(locations) == 0 {
		return nil, errors.GeocodeFailed
	}

	return &locations[0], nil
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Logger.Error("Weather request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Error("Weather API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	return raw, nil
}
