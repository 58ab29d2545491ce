package weather

import (
	"context"
	"sync"
	"time"
)

// MockClient API key 缺失或测试场景下的天气客户端
type MockClient struct {
	mu            sync.Mutex
	ForecastCalls int
	GeocodeCalls  []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) FiveDayForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	m.mu.Lock()
	m.ForecastCalls++
	m.mu.Unlock()

	now := time.Now()
	entries := make([]Entry, 0, 5)
	for i := 0; i < 5; i++ {
		entries = append(entries, Entry{
			Dt:   now.AddDate(0, 0, i).Unix(),
			Main: Main{Temp: 21.5, Humidity: 60},
			Weather: []Condition{
				{Main: "Clear", Description: "맑음"},
			},
		})
	}

	return &Forecast{
		City: City{Name: "Mock City"},
		List: entries,
	}, nil
}

func (m *MockClient) Geocode(ctx context.Context, city string) (*Location, error) {
	m.mu.Lock()
	m.GeocodeCalls = append(m.GeocodeCalls, city)
	m.mu.Unlock()

	return &Location{
		Name:      city,
		Latitude:  37.5665,
		Longitude: 126.9780,
		Country:   "KR",
	}, nil
}
