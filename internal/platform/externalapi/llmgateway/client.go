package llmgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"pitch_backend/internal/feature/analyzer/usecase"
	"pitch_backend/internal/platform/externalapi/llmgateway/dto"
	"pitch_backend/internal/shared/logutil"
)

// maxErrorBody bounds how much of an error response is read for logging.
const maxErrorBody = 4 << 10

// GatewayCompleter はOpenAI互換のチャット補完ゲートウェイを呼び出すCompleter実装です。
type GatewayCompleter struct {
	cfg    Config
	client *http.Client
}

// GatewayCompleterがCompleterを実装していることをコンパイル時に検証します。
var _ usecase.Completer = (*GatewayCompleter)(nil)

// NewGatewayCompleter は指定された設定とHTTPクライアントでGatewayCompleterを生成します。
func NewGatewayCompleter(cfg Config, client *http.Client) *GatewayCompleter {
	return &GatewayCompleter{cfg: cfg.withDefaults(), client: client}
}

// Complete はsystem/userの2メッセージで補完を要求し、最初の選択肢のテキストを返します。
// 429はErrRateLimited、402はErrPaymentRequired、それ以外の失敗はErrUpstreamになります。
func (g *GatewayCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(dto.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []dto.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: usecase.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", usecase.ErrUpstream, err)
	}

	u := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", usecase.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	res, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrUpstream, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return "", usecase.ErrRateLimited
	case res.StatusCode == http.StatusPaymentRequired:
		return "", usecase.ErrPaymentRequired
	case res.StatusCode < 200 || res.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		slog.Error("llm gateway error", "status", res.StatusCode, "body", logutil.Truncate(string(body), 500))
		return "", fmt.Errorf("%w: llm gateway http %d", usecase.ErrUpstream, res.StatusCode)
	}

	var body dto.ChatCompletionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", usecase.ErrUpstream, err)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", usecase.ErrUpstream)
	}
	return body.Choices[0].Message.Content, nil
}
