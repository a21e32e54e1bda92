package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/aiseo_go_server/config"
)

func TestNewRegistry_OnlyConfiguredProviders(t *testing.T) {
	cfg := &config.ProvidersConfig{
		OpenAI:    config.LLMConfig{APIKey: "sk-real-key", Model: "gpt-4o-mini", MaxTokens: 1000, Temperature: 0.7, TimeoutSeconds: 30},
		Anthropic: config.LLMConfig{APIKey: "sk-ant-real", Model: "claude-3-5-sonnet-20241022", MaxTokens: 1000, Temperature: 0.7, TimeoutSeconds: 30},
	}

	r := NewRegistry(cfg)
	assert.Equal(t, []string{ProviderOpenAI, ProviderAnthropic}, r.Enabled())
}

func TestNewRegistry_PlaceholderKeysExcluded(t *testing.T) {
	cfg := &config.ProvidersConfig{
		OpenAI:     config.LLMConfig{APIKey: "sk-your-openai-key-here", TimeoutSeconds: 30},
		Perplexity: config.LLMConfig{APIKey: "pplx-your-perplexity-key-here", TimeoutSeconds: 30},
		Google:     config.LLMConfig{APIKey: "your-google-key-here", TimeoutSeconds: 30},
	}

	r := NewRegistry(cfg)
	assert.Empty(t, r.Enabled())
}

func TestNewRegistry_SearchNeedsKeyAndCX(t *testing.T) {
	cfg := &config.ProvidersConfig{
		GoogleSearch: config.GoogleSearchConfig{APIKey: "real-key", NumResults: 10, TimeoutSeconds: 30},
	}
	r := NewRegistry(cfg)
	assert.Empty(t, r.Enabled(), "missing cx should exclude google_search")

	cfg.GoogleSearch.CX = "engine-id"
	r = NewRegistry(cfg)
	assert.Equal(t, []string{ProviderGoogleSearch}, r.Enabled())

	a, ok := r.Get(ProviderGoogleSearch)
	require.True(t, ok)
	assert.True(t, a.IsSearch())
	assert.Equal(t, "Google Search", a.DisplayName())
}

func TestRegistry_Select(t *testing.T) {
	cfg := &config.ProvidersConfig{
		OpenAI:    config.LLMConfig{APIKey: "sk-real", Model: "gpt-4o-mini", TimeoutSeconds: 30},
		Anthropic: config.LLMConfig{APIKey: "sk-ant-real", Model: "claude-3-5-sonnet-20241022", TimeoutSeconds: 30},
	}
	r := NewRegistry(cfg)

	all := r.Select(nil)
	assert.Len(t, all, 2)

	subset := r.Select([]string{ProviderAnthropic})
	require.Len(t, subset, 1)
	assert.Equal(t, ProviderAnthropic, subset[0].Name())

	// Unknown or disabled identifiers are silently dropped
	none := r.Select([]string{"perplexity", "nope"})
	assert.Empty(t, none)
}
