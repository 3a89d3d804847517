package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Chat      ChatConfig      `mapstructure:"chat"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
}

// Supported database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	Name        string `mapstructure:"name"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type ChatConfig struct {
	ContextWindow      int           `mapstructure:"context_window"`
	DefaultPageSize    int           `mapstructure:"default_page_size"`
	MaxPageSize        int           `mapstructure:"max_page_size"`
	MaxMessageLength   int           `mapstructure:"max_message_length"`
	FallbackMessage    string        `mapstructure:"fallback_message"`
	HistoryCacheTTL    time.Duration `mapstructure:"history_cache_ttl"`
	HistoryCachePrefix string        `mapstructure:"history_cache_prefix"`
}

type LLMConfig struct {
	DefaultProvider string           `mapstructure:"default_provider"`
	SystemPrompt    string           `mapstructure:"system_prompt"`
	Timeout         time.Duration    `mapstructure:"timeout"`
	OpenRouter      OpenRouterConfig `mapstructure:"openrouter"`
	OpenAI          OpenAIConfig     `mapstructure:"openai"`
	Anthropic       AnthropicConfig  `mapstructure:"anthropic"`
	Ollama          OllamaConfig     `mapstructure:"ollama"`
	DeepSeek        DeepSeekConfig   `mapstructure:"deepseek"`
	Gemini          GeminiConfig     `mapstructure:"gemini"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Supported rate limiter backends
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

type RateLimitConfig struct {
	Backend string       `mapstructure:"backend"`
	Global  PolicyConfig `mapstructure:"global"`
	Auth    PolicyConfig `mapstructure:"auth"`
}

type PolicyConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Message  string        `mapstructure:"message"`
}

type LoggingConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   string        `mapstructure:"file"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile reports a missing file as an fs error rather than
		// ConfigFileNotFoundError.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}

	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	switch c.RateLimit.Backend {
	case RateLimitMemory:
	case RateLimitRedis:
		if !c.Redis.Enabled {
			return errors.New("rate_limit.backend is redis but redis is disabled")
		}
	default:
		return fmt.Errorf("unsupported rate limit backend %q", c.RateLimit.Backend)
	}

	for name, p := range map[string]PolicyConfig{"global": c.RateLimit.Global, "auth": c.RateLimit.Auth} {
		if p.Requests <= 0 || p.Window <= 0 {
			return fmt.Errorf("rate_limit.%s must have positive requests and window", name)
		}
	}

	if c.Chat.ContextWindow <= 0 {
		return errors.New("chat.context_window must be positive")
	}
	if strings.TrimSpace(c.Chat.FallbackMessage) == "" {
		return errors.New("chat.fallback_message is required")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "55s")
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:5173",
		"https://aichatbot-chirag.netlify.app",
		"http://localhost:3000",
	})

	// Database
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.dsn", "mongodb://localhost:27017/aisupport")
	v.SetDefault("database.name", "aisupport")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.auto_migrate", true)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "support-chat")

	// Chat
	v.SetDefault("chat.context_window", 10)
	v.SetDefault("chat.default_page_size", 20)
	v.SetDefault("chat.max_page_size", 100)
	v.SetDefault("chat.max_message_length", 4000)
	v.SetDefault("chat.fallback_message", "Sorry, I am having trouble connecting to the AI at the moment.")
	v.SetDefault("chat.history_cache_ttl", "5m")
	v.SetDefault("chat.history_cache_prefix", "chat:history")

	// LLM
	v.SetDefault("llm.default_provider", "openrouter")
	v.SetDefault("llm.system_prompt", "You are a helpful customer support assistant.")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.openrouter.model", "deepseek/deepseek-chat-v3.1:free")
	v.SetDefault("llm.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openrouter.referer", "https://ai-customer-support.vercel.app")
	v.SetDefault("llm.openrouter.title", "AI Customer Support App")
	v.SetDefault("llm.ollama.default_model", "llama3")

	// Rate limiting
	v.SetDefault("rate_limit.backend", RateLimitMemory)
	v.SetDefault("rate_limit.global.requests", 50)
	v.SetDefault("rate_limit.global.window", "1m")
	v.SetDefault("rate_limit.global.message", "Too many requests, please try again later.")
	v.SetDefault("rate_limit.auth.requests", 5)
	v.SetDefault("rate_limit.auth.window", "1m")
	v.SetDefault("rate_limit.auth.message", "Too many login attempts. Try again in 1 minute(s).")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN", "MONGO_URI")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM API Keys
	v.BindEnv("llm.default_provider", "LLM_PROVIDER")
	v.BindEnv("llm.openrouter.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// Rate limiting
	v.BindEnv("rate_limit.backend", "RATE_LIMIT_BACKEND")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
	v.BindEnv("logging.file", "LOG_FILE")
}
