// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"pitch_backend/internal/feature/analyzer/adapters/gemini"
	"pitch_backend/internal/feature/analyzer/usecase"
	"pitch_backend/internal/platform/config"
	"pitch_backend/internal/platform/externalapi/llmgateway"
	infrahttp "pitch_backend/internal/platform/http"
)

// NewCompleter creates the configured LLM provider.
// The gateway client gets its own HTTP client with the configured timeout.
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (usecase.Completer, error) {
	switch cfg.Provider {
	case config.ProviderGateway:
		httpClient := infrahttp.NewHTTPClient(cfg.Gateway.Timeout)
		return llmgateway.NewGatewayCompleter(cfg.Gateway, httpClient), nil
	case config.ProviderGemini:
		c, err := gemini.NewGeminiCompleter(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
