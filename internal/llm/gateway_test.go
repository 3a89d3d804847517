package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/support-chat/internal/domain"
)

type stubProvider struct {
	name       string
	configured bool
	reply      string
	err        error
	got        Request
	gotModel   string
	deadline   bool
}

func (p *stubProvider) Name() string              { return p.name }
func (p *stubProvider) AvailableModels() []string { return []string{"stub-1"} }
func (p *stubProvider) DefaultModel() string      { return "stub-1" }
func (p *stubProvider) IsConfigured() bool        { return p.configured }

func (p *stubProvider) Complete(ctx context.Context, req Request, model string) (*Response, error) {
	p.got = req
	p.gotModel = model
	_, p.deadline = ctx.Deadline()
	if p.err != nil {
		return nil, p.err
	}
	return &Response{Content: p.reply, Model: "stub-1"}, nil
}

func TestBuildRequest(t *testing.T) {
	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "help"},
	}

	req := BuildRequest("be nice", history)

	assert.Equal(t, "be nice", req.System)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "help"},
	}, req.Messages)
}

func TestGateway_Generate(t *testing.T) {
	stub := &stubProvider{name: "stub", configured: true, reply: "  sure thing \n"}
	router := NewRouter("stub")
	router.RegisterProvider(stub)

	gw := NewGateway(router, GatewayConfig{Model: "m", SystemPrompt: "sys", Timeout: time.Second})

	got, err := gw.Generate(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "q"}})
	require.NoError(t, err)
	assert.Equal(t, "sure thing", got)
	assert.Equal(t, "m", stub.gotModel)
	assert.Equal(t, "sys", stub.got.System)
	assert.True(t, stub.deadline)
}

func TestGateway_GenerateFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"provider error", &stubProvider{name: "stub", configured: true, err: errors.New("boom")}},
		{"empty reply", &stubProvider{name: "stub", configured: true, reply: "   "}},
		{"not configured", &stubProvider{name: "stub", configured: false, reply: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter("stub")
			router.RegisterProvider(tt.provider)
			gw := NewGateway(router, GatewayConfig{})

			_, err := gw.Generate(context.Background(), nil)
			assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		gw := NewGateway(NewRouter("missing"), GatewayConfig{})
		_, err := gw.Generate(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

func TestRouter_ListProviders(t *testing.T) {
	router := NewRouter("b")
	router.RegisterProvider(&stubProvider{name: "b", configured: true})
	router.RegisterProvider(&stubProvider{name: "a", configured: true})
	router.RegisterProvider(&stubProvider{name: "c", configured: false})

	assert.Equal(t, []string{"a", "b"}, router.ListProviders())

	infos := router.GetProvidersInfo()
	require.Len(t, infos, 3)
	assert.Equal(t, "a", infos[0].Name)
	assert.True(t, infos[1].Default)
	assert.False(t, infos[2].Configured)
}
