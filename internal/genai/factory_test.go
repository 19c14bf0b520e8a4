package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvModel, "")
	t.Setenv(EnvAnthropicAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")
}

func TestNewFromEnv(t *testing.T) {
	t.Run("explicit anthropic", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvProvider, "anthropic")
		t.Setenv(EnvAnthropicAPIKey, "test-key")

		g, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, g.Provider())
		assert.Equal(t, DefaultAnthropicModel, g.Model())
	})

	t.Run("explicit openai", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvProvider, "openai")
		t.Setenv(EnvOpenAIAPIKey, "test-key")

		g, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, g.Provider())
	})

	t.Run("unknown provider", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvProvider, "llama-at-home")

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})

	t.Run("auto-detect prefers anthropic", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvAnthropicAPIKey, "a-key")
		t.Setenv(EnvOpenAIAPIKey, "o-key")

		g, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, g.Provider())
	})

	t.Run("no keys configured", func(t *testing.T) {
		clearProviderEnv(t)

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("model override", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvAnthropicAPIKey, "a-key")
		t.Setenv(EnvModel, "claude-opus-4-20250514")

		g, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "claude-opus-4-20250514", g.Model())
	})
}

func TestDetectProvider(t *testing.T) {
	clearProviderEnv(t)
	assert.Equal(t, "", DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "o-key")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv(EnvAnthropicAPIKey, "a-key")
	assert.Equal(t, ProviderAnthropic, DetectProvider())

	t.Setenv(EnvProvider, "OpenAI")
	assert.Equal(t, ProviderOpenAI, DetectProvider())
}
