package llm

import "context"

// Chat roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation sent to a provider
type Message struct {
	Role    string
	Content string
}

// Request contains the conversation to complete
type Request struct {
	// System is the instruction prepended to the conversation.
	System string
	// Messages are ordered oldest to newest and end with a user turn.
	Messages []Message
}

// Response contains LLM generation result
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete generates the next assistant turn
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}
