package amadeus

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient 凭据缺失或测试场景下的航班客户端
type MockClient struct {
	mu            sync.Mutex
	OfferCalls    []FlightSearchParams
	LocationCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) FlightOffers(ctx context.Context, params FlightSearchParams) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OfferCalls = append(m.OfferCalls, params)

	offers := []map[string]interface{}{
		{
			"id": "mock-offer-1",
			"itineraries": []map[string]interface{}{
				{
					"duration": "PT2H30M",
					"segments": []map[string]interface{}{
						{
							"departure":   map[string]string{"iataCode": params.OriginLocationCode, "at": params.DepartureDate + "T09:00:00"},
							"arrival":     map[string]string{"iataCode": params.DestinationLocationCode, "at": params.DepartureDate + "T11:30:00"},
							"carrierCode": "KE",
							"number":      "0001",
						},
					},
				},
			},
			"price": map[string]string{"total": "150000", "currency": params.CurrencyCode},
		},
	}
	raw, _ := json.Marshal(offers)
	return raw, nil
}

func (m *MockClient) SearchLocations(ctx context.Context, subType, keyword string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LocationCalls = append(m.LocationCalls, keyword)

	locations := []map[string]interface{}{
		{
			"iataCode": "ICN",
			"name":     "INCHEON INTL",
			"subType":  "AIRPORT",
			"address":  map[string]string{"cityName": "SEOUL", "countryName": "SOUTH KOREA"},
		},
	}
	raw, _ := json.Marshal(locations)
	return raw, nil
}
