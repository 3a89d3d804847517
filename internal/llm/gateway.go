package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/support-chat/internal/domain"
)

// Gateway turns a user's recent history into a single assistant reply
// using the router's default provider.
type Gateway struct {
	router       *Router
	provider     string
	model        string
	systemPrompt string
	timeout      time.Duration
}

// GatewayConfig configures a Gateway
type GatewayConfig struct {
	// Provider overrides the router default when set.
	Provider     string
	Model        string
	SystemPrompt string
	Timeout      time.Duration
}

// NewGateway creates a gateway over router
func NewGateway(router *Router, cfg GatewayConfig) *Gateway {
	return &Gateway{
		router:       router,
		provider:     cfg.Provider,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		timeout:      cfg.Timeout,
	}
}

// BuildRequest maps stored history, ordered oldest to newest, onto a
// provider request.
func BuildRequest(systemPrompt string, history []domain.ChatMessage) Request {
	req := Request{
		System:   systemPrompt,
		Messages: make([]Message, 0, len(history)),
	}
	for _, m := range history {
		role := RoleUser
		if m.Role == domain.RoleAssistant {
			role = RoleAssistant
		}
		req.Messages = append(req.Messages, Message{Role: role, Content: m.Content})
	}
	return req
}

// Generate produces the assistant reply for history. Every failure, including
// an empty completion, is reported as an upstream error.
func (g *Gateway) Generate(ctx context.Context, history []domain.ChatMessage) (string, error) {
	provider, err := g.router.GetProvider(g.provider)
	if err != nil {
		return "", domain.NewUpstreamError("AI provider unavailable", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := provider.Complete(ctx, BuildRequest(g.systemPrompt, history), g.model)
	if err != nil {
		return "", domain.NewUpstreamError("AI request failed", err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", domain.NewUpstreamError("AI returned an empty reply", nil)
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("LLM reply generated")

	return content, nil
}
