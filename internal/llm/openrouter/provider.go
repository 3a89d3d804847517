// Package openrouter configures the OpenAI-compatible client for OpenRouter.
package openrouter

import (
	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/internal/llm/openai"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// NewProvider creates a new OpenRouter provider
func NewProvider(cfg config.OpenRouterConfig) *openai.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openai.New(openai.Config{
		Name:         "openrouter",
		APIKey:       cfg.APIKey,
		DefaultModel: cfg.Model,
		BaseURL:      baseURL,
		Models:       []string{cfg.Model},
		Headers: map[string]string{
			"HTTP-Referer": cfg.Referer,
			"X-Title":      cfg.Title,
		},
	})
}
