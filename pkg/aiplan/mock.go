package aiplan

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MockClient 开发与测试用客户端，返回固定结构的信封响应
type MockClient struct {
	mu    sync.Mutex
	Calls []Request

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls: make([]Request, 0),
	}
}

func (m *MockClient) GeneratePlan(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.FailNext {
		m.FailNext = false
		return "", fmt.Errorf("mock ai plan failure")
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		start = time.Now()
	}

	plan := map[string]interface{}{
		"title": req.Destination + " 여행",
		"days": []map[string]interface{}{
			{
				"date":  start.Format("2006-01-02"),
				"title": "1일차",
				"schedules": []map[string]interface{}{
					{"time": "10:00", "name": req.Destination + " 도착", "notes": "mock itinerary"},
					{"time": "14:00", "name": "자유 시간", "notes": ""},
				},
			},
		},
	}
	planJSON, _ := json.Marshal(plan)

	envelope := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": "```json\n" + string(planJSON) + "\n```"},
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(envelope)

	return string(raw), nil
}
