package llm

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds LLM client configuration.
type Config struct {
	Provider    string   // "openai" or "anthropic"
	APIKey      string   // Required: API key for the provider
	BaseURL     string   // Optional: custom API endpoint (Groq, local gateways)
	Model       string   // Model name (e.g., "llama-3.1-70b-versatile", "claude-sonnet-4-5-20250514")
	MaxTokens   int      // Optional: completion budget, provider default when zero
	Temperature *float64 // nil = model default
}

// TextClient sends a single system+user prompt and returns the raw completion text.
// Implementations hold no per-call state and are safe for concurrent use.
type TextClient interface {
	Generate(ctx context.Context, req TextRequest) (*TextResponse, error)
	Model() string
}

type TextRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  *float64
}

type TextResponse struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// NewTextClient creates a TextClient for the configured provider.
// Defaults to the OpenAI-compatible client if no provider is specified.
func NewTextClient(cfg Config) (TextClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func Temp(t float64) *float64 {
	return &t
}

func resolveMaxTokens(reqMax, cfgMax, fallback int) int {
	if reqMax > 0 {
		return reqMax
	}
	if cfgMax > 0 {
		return cfgMax
	}
	return fallback
}
