package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/support-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/support-chat/internal/api/middleware"
	"github.com/Rrens/support-chat/internal/config"
	"github.com/Rrens/support-chat/internal/domain"
	"github.com/Rrens/support-chat/internal/llm"
	"github.com/Rrens/support-chat/internal/llm/anthropic"
	"github.com/Rrens/support-chat/internal/llm/deepseek"
	"github.com/Rrens/support-chat/internal/llm/gemini"
	"github.com/Rrens/support-chat/internal/llm/ollama"
	"github.com/Rrens/support-chat/internal/llm/openai"
	"github.com/Rrens/support-chat/internal/llm/openrouter"
	"github.com/Rrens/support-chat/internal/ratelimit"
	"github.com/Rrens/support-chat/internal/repository"
	"github.com/Rrens/support-chat/internal/repository/redis"
	"github.com/Rrens/support-chat/internal/security"
	"github.com/Rrens/support-chat/internal/service"
)

// NewLLMRouter registers every provider that has credentials
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	llmRouter := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.OpenRouter.APIKey != "" {
		llmRouter.RegisterProvider(openrouter.NewProvider(cfg.OpenRouter))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.Ollama.Host, cfg.Ollama.DefaultModel))
	}
	if cfg.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	}
	if cfg.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model))
	}
	if cfg.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model))
	}
	if cfg.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	}

	if providers := llmRouter.ListProviders(); len(providers) == 0 {
		log.Warn().Msg("No LLM provider configured, chat replies will use the fallback message")
	} else {
		log.Info().Strs("providers", providers).Msg("LLM providers registered")
	}

	return llmRouter
}

// NewRouter creates and configures the HTTP router. redisClient may be nil.
func NewRouter(cfg *config.Config, store *repository.Store, redisClient *redis.Client, llmRouter *llm.Router) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", customMiddleware.TokenHeader},
		ExposedHeaders:   []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiting
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.RateLimit.Backend == config.RateLimitRedis && redisClient != nil {
		limiter = redis.NewRateLimiter(redisClient)
	}
	globalLimit := customMiddleware.NewRateLimitMiddleware(limiter, ratelimit.Policy{
		Name:    "global",
		Limit:   cfg.RateLimit.Global.Requests,
		Window:  cfg.RateLimit.Global.Window,
		Message: cfg.RateLimit.Global.Message,
	})
	authLimit := customMiddleware.NewRateLimitMiddleware(limiter, ratelimit.Policy{
		Name:    "auth",
		Limit:   cfg.RateLimit.Auth.Requests,
		Window:  cfg.RateLimit.Auth.Window,
		Message: cfg.RateLimit.Auth.Message,
	})
	r.Use(globalLimit.Limit)

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	var historyCache domain.HistoryCache
	readiness := map[string]handler.Pinger{"database": store}
	if redisClient != nil {
		historyCache = redis.NewHistoryCache(redisClient, cfg.Chat.HistoryCachePrefix, cfg.Chat.HistoryCacheTTL)
		readiness["redis"] = redisClient
	}

	gateway := llm.NewGateway(llmRouter, llm.GatewayConfig{
		SystemPrompt: cfg.LLM.SystemPrompt,
		Timeout:      cfg.LLM.Timeout,
	})

	// Initialize services
	authService := service.NewAuthService(store.Users, jwtManager)
	chatService := service.NewChatService(store.Messages, gateway, historyCache, cfg.Chat)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	r.Get("/", handler.Banner)
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(llmRouter, readiness))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimit.Limit)
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/send", chatHandler.Send)
			r.Get("/history", chatHandler.History)
		})
	})

	return r
}
