package aiplan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripmate/config"
	"tripmate/pkg/logger"
)

// GeminiClient 调用 Gemini generateContent 接口生成行程
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewGeminiClient() *GeminiClient {
	cfg := config.Cfg
	return &GeminiClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		endpoint:   cfg.GeminiEndpoint,
		apiKey:     cfg.GeminiAPIKey,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// GeneratePlan 生成行程。返回模型响应原文（信封 JSON），
// 由归一化层负责解包，保证存储格式与历史记录一致。
func (c *GeminiClient) GeneratePlan(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildPrompt(req)}}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := c.endpoint + "?key=" + c.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Logger.Error("Gemini request failed",
			zap.String("destination", req.Destination),
			zap.Error(err),
		)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Logger.Error("Gemini returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	logger.Logger.Info("Gemini plan generated",
		zap.String("destination", req.Destination),
		zap.Duration("elapsed", time.Since(start)),
	)

	return string(raw), nil
}

// buildPrompt 拼装生成提示词。要求模型输出 ```json 围栏包裹的固定结构，
// 与归一化层的围栏提取策略约定一致。
func buildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s 여행 일정을 만들어주세요.\n", req.Destination)
	fmt.Fprintf(&sb, "여행 기간: %s ~ %s\n", req.StartDate, req.EndDate)
	if req.Companions != "" {
		fmt.Fprintf(&sb, "동행: %s\n", req.Companions)
	}
	if len(req.Interests) > 0 {
		fmt.Fprintf(&sb, "관심사: %s\n", strings.Join(req.Interests, ", "))
	}
	if req.FreeText != "" {
		fmt.Fprintf(&sb, "추가 요청: %s\n", req.FreeText)
	}

	sb.WriteString(`
결과는 반드시 아래 형식의 JSON만 출력하세요. 코드 블록(` + "```json ... ```" + `)으로 감싸주세요.
{
  "title": "여행 제목",
  "days": [
    {
      "date": "YYYY-MM-DD",
      "title": "N일차",
      "schedules": [
        {"time": "HH:MM", "name": "활동 이름", "notes": "설명", "lat": 0.0, "lng": 0.0, "address": "주소"}
      ]
    }
  ]
}
`)

	return sb.String()
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
