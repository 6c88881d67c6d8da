package gateway

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/k-negishi/smart-timesheet/internal/domain"
)

// DefaultGeminiModel スケジュール生成に使うモデル
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiScheduler Gemini APIを使用したScheduleModelの実装
type GeminiScheduler struct {
	client *genai.Client
	model  string
}

// GeminiOption Geminiクライアント設定のオプション
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL APIのベースURLを差し替える
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = baseURL
	}
}

// WithGeminiHTTPClient HTTPクライアントを差し替える
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPClient = client
	}
}

// NewGeminiScheduler Geminiクライアントを作成。APIキーが空の場合は通信前に設定エラーを返す
func NewGeminiScheduler(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiScheduler, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEYが設定されていません", domain.ErrConfiguration)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: Geminiクライアントの作成に失敗しました: %w", domain.ErrConfiguration, err)
	}

	return &GeminiScheduler{client: client, model: model}, nil
}

// scheduleResponseSchema AIに返させるJSON配列の形
func scheduleResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"taskId":      {Type: genai.TypeString},
				"title":       {Type: genai.TypeString},
				"startTime":   {Type: genai.TypeString, Description: "ISO 8601 string for start time"},
				"endTime":     {Type: genai.TypeString, Description: "ISO 8601 string for end time"},
				"description": {Type: genai.TypeString},
			},
			Required: []string{"taskId", "title", "startTime", "endTime"},
		},
	}
}

// GenerateSchedule プロンプトを送信し、応答本文のJSON文字列を返す。リトライはしない
func (g *GeminiScheduler) GenerateSchedule(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   scheduleResponseSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: Gemini API呼び出しに失敗しました: %w", domain.ErrRemoteCall, err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
