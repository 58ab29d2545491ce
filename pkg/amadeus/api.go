package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/logger"
)

// APIClient 直连 Amadeus 自助 API。
// OAuth2 client_credentials token 缓存在内存，过期前一分钟刷新。
type APIClient struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAPIClient() *APIClient {
	cfg := config.Cfg
	return &APIClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimSuffix(cfg.AmadeusBaseURL, "/"),
		clientID:     cfg.AmadeusClientID,
		clientSecret: cfg.AmadeusClientSecret,
	}
}

func (c *APIClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("amadeus token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Logger.Error("Amadeus token request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("amadeus token request returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode amadeus token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// FlightOffers 搜索航班报价
func (c *APIClient) FlightOffers(ctx context.Context, params FlightSearchParams) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("originLocationCode", params.OriginLocationCode)
	query.Set("destinationLocationCode", params.DestinationLocationCode)
	query.Set("departureDate", params.DepartureDate)
	if params.ReturnDate != "" {
		query.Set("returnDate", params.ReturnDate)
	}
	query.Set("adults", strconv.Itoa(params.Adults))
	query.Set("currencyCode", params.CurrencyCode)
	query.Set("max", strconv.Itoa(params.Max))
	if params.TravelClass != "" {
		query.Set("travelClass", params.TravelClass)
	}
	if params.NonStop {
		query.Set("nonStop", "true")
	}

	return c.get(ctx, "/v2/shopping/flight-offers", query)
}

// SearchLocations 机场/城市关键词联想
func (c *APIClient) SearchLocations(ctx context.Context, subType, keyword string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("subType", subType)
	query.Set("keyword", keyword)

	return c.get(ctx, "/v1/reference-data/locations", query)
}

// get 执行带鉴权的 GET 并剥出响应的 data 字段
func (c *APIClient) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build amadeus request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amadeus request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read amadeus response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Error("Amadeus API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("amadeus API returned status %d", resp.StatusCode)
	}

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode amadeus response: %w", err)
	}
	if body.Data == nil {
		return json.RawMessage("[]"), nil
	}

	return body.Data, nil
}
