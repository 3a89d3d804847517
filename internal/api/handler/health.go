package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/support-chat/internal/api/response"
	"github.com/Rrens/support-chat/internal/llm"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Banner answers the root path
func Banner(w http.ResponseWriter, r *http.Request) {
	response.Text(w, http.StatusOK, "AI Customer Support Backend is running!")
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including store and cache connectivity
func ReadyCheck(llmRouter *llm.Router, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				response.ServiceUnavailable(w, name+" not ready")
				return
			}
		}

		response.OK(w, map[string]any{
			"status":           "ready",
			"default_provider": llmRouter.DefaultProvider(),
			"providers":        llmRouter.GetProvidersInfo(),
		})
	}
}
