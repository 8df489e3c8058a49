// Package llmgateway provides a client for an OpenAI-compatible chat completions gateway.
package llmgateway

import "time"

const (
	// DefaultBaseURL is the gateway endpoint used when none is configured.
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	// DefaultModel is the model identifier sent when none is configured.
	DefaultModel = "google/gemini-2.5-flash"
)

// Config holds configuration for the gateway client.
type Config struct {
	APIKey  string        // bearer key for the gateway
	BaseURL string        // e.g. "https://ai.gateway.lovable.dev/v1"
	Model   string        // model identifier, e.g. "google/gemini-2.5-flash"
	Timeout time.Duration // HTTP request timeout
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return c
}
