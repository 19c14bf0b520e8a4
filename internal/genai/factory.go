package genai

import (
	"fmt"
	"os"
	"strings"
)

// Config holds generator configuration
type Config struct {
	Provider  string
	APIKey    string
	CacheSize int
}

// NewFromEnv creates a generator based on environment variables
// Priority:
// 1. MINDDB_PROVIDER (anthropic, openai)
// 2. Check for API keys: ANTHROPIC_API_KEY, OPENAI_API_KEY
func NewFromEnv() (Generator, error) {
	provider := os.Getenv(EnvProvider)
	anthropicKey := os.Getenv(EnvAnthropicAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	cache := NewCache(1000)

	// Explicit provider selection
	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderAnthropic:
			return NewAnthropicProvider(anthropicKey, cache)
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, cache)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
		}
	}

	// Auto-detect based on available API keys
	if anthropicKey != "" {
		return NewAnthropicProvider(anthropicKey, cache)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, cache)
	}

	return nil, fmt.Errorf("%w: set %s or %s", ErrNoProviderEnabled,
		EnvAnthropicAPIKey, EnvOpenAIAPIKey)
}

// New creates a generator with explicit configuration
func New(cfg Config) (Generator, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cache)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current
// environment, or "" when none is configured.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvAnthropicAPIKey) != "" {
		return ProviderAnthropic
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ""
}
