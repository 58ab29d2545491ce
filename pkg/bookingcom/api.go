package bookingcom

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
	"tripmate/pkg/logger"
)

// APIClient 通过 RapidAPI 网关调用 Booking.com 坐标搜索
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewAPIClient() *APIClient {
	cfg := config.Cfg
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.BookingBaseURL, "/"),
		apiKey:     cfg.BookingAPIKey,
	}
}

// SearchByCoordinates 按坐标搜索酒店
func (c *APIClient) SearchByCoordinates(ctx context.Context, params HotelSearchParams) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(params.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(params.Longitude, 'f', -1, 64))
	query.Set("checkin_date", params.CheckinDate)
	query.Set("checkout_date", params.CheckoutDate)
	query.Set("adults_number", strconv.Itoa(params.AdultsNumber))
	query.Set("children_number", strconv.Itoa(params.ChildrenNumber))
	query.Set("filter_by_currency", params.Currency)
	query.Set("order_by", "popularity")
	query.Set("locale", "ko")
	query.Set("units", "metric")
	query.Set("room_number", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/hotels/search-by-coordinates?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build booking request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", "booking-com.p.rapidapi.com")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Logger.Error("Hotel search request failed", zap.Error(err))
		return nil, fmt.Errorf("hotel search request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read hotel search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Error("Hotel search API returned error",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("hotel search API returned status %d", resp.StatusCode)
	}

	var body struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode hotel search response: %w", err)
	}
	if body.Result == nil {
		return json.RawMessage("[]"), nil
	}

	return body.Result, nil
}
