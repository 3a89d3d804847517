// Package deepseek configures the OpenAI-compatible client for DeepSeek.
package deepseek

import (
	"github.com/Rrens/support-chat/internal/llm/openai"
)

// NewProvider creates a new DeepSeek provider
func NewProvider(apiKey, defaultModel string) *openai.Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	return openai.New(openai.Config{
		Name:         "deepseek",
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		BaseURL:      "https://api.deepseek.com/v1",
		Models: []string{
			"deepseek-chat",
			"deepseek-reasoner",
		},
	})
}
