// Package gemini はGoogle Gemini APIを使用したピッチ分析用のCompleterを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"pitch_backend/internal/feature/analyzer/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// Config はGeminiクライアントの設定です。
type Config struct {
	APIKey string
	Model  string
}

// GeminiCompleter はGoogle Gemini APIでチャット補完を行います。
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// GeminiCompleterがCompleterを実装していることをコンパイル時に検証します。
var _ usecase.Completer = (*GeminiCompleter)(nil)

// NewGeminiCompleter はGeminiCompleterの新しいインスタンスを生成します。
// APIKeyが空の場合はADC（GOOGLE_GENAI_USE_VERTEXAI等の環境変数）にフォールバックします。
func NewGeminiCompleter(ctx context.Context, cfg Config) (*GeminiCompleter, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete はシステム指示とユーザープロンプトを送信し、応答テキストを返します。
func (g *GeminiCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](usecase.Temperature),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt), config)
	if err != nil {
		return "", mapAPIError(err)
	}
	return resp.Text(), nil
}

// mapAPIError はGemini APIのエラーをusecaseのセンチネルエラーに変換します。
func mapAPIError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", usecase.ErrRateLimited, err)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %v", usecase.ErrPaymentRequired, err)
	default:
		return fmt.Errorf("%w: gemini API request failed: %v", usecase.ErrUpstream, err)
	}
}
