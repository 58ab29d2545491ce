package bookingcom

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient API key 缺失或测试场景下的酒店客户端
type MockClient struct {
	mu    sync.Mutex
	Calls []HotelSearchParams
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SearchByCoordinates(ctx context.Context, params HotelSearchParams) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, params)

	hotels := []map[string]interface{}{
		{
			"hotel_id":          1,
			"hotel_name":        "Mock Grand Hotel",
			"address":           "123 Mock Street",
			"latitude":          params.Latitude,
			"longitude":         params.Longitude,
			"min_total_price":   120000,
			"review_score":      8.7,
			"review_score_word": "아주 좋음",
			"max_photo_url":     "https://example.com/hotel.jpg",
			"currency_code":     params.Currency,
			"distance_to_cc":    "0.5",
			"checkin":           map[string]string{"from": "15:00"},
			"checkout":          map[string]string{"until": "11:00"},
		},
	}
	raw, _ := json.Marshal(hotels)
	return raw, nil
}
