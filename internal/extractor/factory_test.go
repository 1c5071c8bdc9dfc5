package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invodex/internal/config"
	"invodex/internal/extractor"

	// Register providers for the registry tests.
	_ "invodex/internal/extractor/claude"
	_ "invodex/internal/extractor/gemini"
	_ "invodex/internal/extractor/openai"
)

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := extractor.NewExtractor(&config.ExtractorProviderConfig{Provider: "dalle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extraction provider")
}

func TestNewExtractor_RegisteredProviders(t *testing.T) {
	for _, name := range []string{"openai", "claude", "gemini"} {
		e, err := extractor.NewExtractor(&config.ExtractorProviderConfig{
			Provider: name,
			APIKey:   "test-key",
		})
		require.NoError(t, err, name)
		assert.NotNil(t, e, name)
	}
}

func TestNewFromConfig_PrimaryOnly(t *testing.T) {
	cfg := &config.ExtractorConfig{
		Primary: config.ExtractorProviderConfig{Provider: "openai", APIKey: "key"},
	}

	e, err := extractor.NewFromConfig(cfg)
	require.NoError(t, err)

	_, isFallback := e.(*extractor.FallbackExtractor)
	assert.False(t, isFallback)
}

func TestNewFromConfig_WithSecondary(t *testing.T) {
	cfg := &config.ExtractorConfig{
		Primary:   config.ExtractorProviderConfig{Provider: "openai", APIKey: "key1"},
		Secondary: config.ExtractorProviderConfig{Provider: "claude", APIKey: "key2"},
	}

	e, err := extractor.NewFromConfig(cfg)
	require.NoError(t, err)

	_, isFallback := e.(*extractor.FallbackExtractor)
	assert.True(t, isFallback)
}

func TestNewFromConfig_LegacyFlatFields(t *testing.T) {
	cfg := &config.ExtractorConfig{
		Provider: "gemini",
		APIKey:   "key",
	}

	e, err := extractor.NewFromConfig(cfg)
	require.NoError(t, err)
	assert.NotNil(t, e)
}
