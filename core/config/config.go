package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"basegraph.app/assist/core/db"
)

type Config struct {
	OTel         OTelConfig
	AssistantLLM LLMConfig
	Assistant    AssistantConfig
	Events       EventsConfig
	Env          string
	Port         string
	DB           db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider    string // "openai" or "anthropic"
	APIKey      string
	BaseURL     string // Optional: OpenAI-compatible endpoints such as Groq
	Model       string
	MaxTokens   int
	Temperature *float64
}

type AssistantConfig struct {
	Timeout      time.Duration // per model attempt
	MaxRetries   int
	RetryBackoff time.Duration
}

type EventsConfig struct {
	RedisURL        string
	Stream          string
	StreamMaxLen    int64
	TraceHeaderName string
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.cli for the assist command line tool
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("ASSIST_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("ASSIST_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "assist"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		AssistantLLM: loadLLMConfig(),
		Assistant: AssistantConfig{
			Timeout:      getEnvDuration("ASSISTANT_LLM_TIMEOUT", 30*time.Second),
			MaxRetries:   getEnvInt("ASSISTANT_LLM_MAX_RETRIES", 1),
			RetryBackoff: getEnvDuration("ASSISTANT_LLM_RETRY_BACKOFF", 500*time.Millisecond),
		},
		Events: EventsConfig{
			RedisURL:        getEnv("REDIS_URL", ""),
			Stream:          getEnv("REDIS_STREAM", "assistant_invocations"),
			StreamMaxLen:    int64(getEnvInt("REDIS_STREAM_MAXLEN", 10000)),
			TraceHeaderName: getEnv("TRACE_HEADER_NAME", "X-Trace-Id"),
		},
	}

	if cfg.AssistantLLM.APIKey == "" {
		return Config{}, fmt.Errorf("ASSISTANT_LLM_API_KEY is required")
	}

	if cfg.Assistant.MaxRetries < 0 {
		return Config{}, fmt.Errorf("ASSISTANT_LLM_MAX_RETRIES must not be negative")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c EventsConfig) Enabled() bool {
	return c.RedisURL != ""
}

// Groq endpoint and model defaults apply to the openai provider only; other
// providers fall back to their client's own defaults.
func loadLLMConfig() LLMConfig {
	cfg := LLMConfig{
		Provider:    getEnv("ASSISTANT_LLM_PROVIDER", "openai"),
		APIKey:      getEnv("ASSISTANT_LLM_API_KEY", ""),
		MaxTokens:   getEnvInt("ASSISTANT_LLM_MAX_TOKENS", 1024),
		Temperature: getEnvFloatPtr("ASSISTANT_LLM_TEMPERATURE"),
	}

	baseURL, model := "", ""
	if cfg.Provider == "openai" {
		baseURL = "https://api.groq.com/openai/v1"
		model = "llama-3.1-70b-versatile"
	}
	cfg.BaseURL = getEnv("ASSISTANT_LLM_BASE_URL", baseURL)
	cfg.Model = getEnv("ASSISTANT_LLM_MODEL", model)
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// nil means "use the model default"
func getEnvFloatPtr(key string) *float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return &f
		}
	}
	return nil
}
