package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invodex/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, int64(16), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, int64(16*1024*1024), cfg.Upload.MaxUploadBytes())
	assert.Equal(t, "./data/csv", cfg.Data.Dir)
	assert.Equal(t, "./data/backups", cfg.Data.BackupDir)
	assert.Equal(t, "local", cfg.Storage.Provider)
	assert.Equal(t, "./data/uploads", cfg.Storage.LocalDir)
	assert.Equal(t, "openai", cfg.Extractor.Provider)
	assert.Equal(t, "gpt-4o-2024-11-20", cfg.Extractor.DefaultModel)
	assert.Equal(t, 2, cfg.Extractor.BatchConcurrency)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INVODEX_SERVER_PORT", ":9090")
	t.Setenv("INVODEX_UPLOAD_MAX_FILE_SIZE_MB", "8")
	t.Setenv("INVODEX_STORAGE_PROVIDER", "s3")
	t.Setenv("INVODEX_STORAGE_S3_BUCKET", "invoices-prod")
	t.Setenv("INVODEX_EXTRACTOR_API_KEY", "sk-test")
	t.Setenv("INVODEX_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, int64(8), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "invoices-prod", cfg.Storage.S3.Bucket)
	assert.Equal(t, "sk-test", cfg.Extractor.APIKey)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestExtractorConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider:     "openai",
		APIKey:       "sk-legacy",
		DefaultModel: "gpt-4o-2024-11-20",
		MaxRetries:   3,
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "gpt-4o-2024-11-20", primary.DefaultModel)
	assert.Equal(t, 3, primary.MaxRetries)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestExtractorConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.ExtractorProviderConfig{
			Provider:     "claude",
			APIKey:       "sk-primary",
			DefaultModel: "claude-sonnet-4-20250514",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", primary.DefaultModel)
}

func TestExtractorConfig_SecondaryConfig_NotConfigured(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider: "openai",
		APIKey:   "sk-test",
	}

	assert.Nil(t, cfg.SecondaryConfig())
}

func TestExtractorConfig_SecondaryConfig_Configured(t *testing.T) {
	cfg := config.ExtractorConfig{
		Primary: config.ExtractorProviderConfig{
			Provider: "openai",
			APIKey:   "sk-primary",
		},
		Secondary: config.ExtractorProviderConfig{
			Provider:     "claude",
			APIKey:       "sk-secondary",
			DefaultModel: "claude-sonnet-4-20250514",
		},
	}

	secondary := cfg.SecondaryConfig()

	require.NotNil(t, secondary)
	assert.Equal(t, "claude", secondary.Provider)
	assert.Equal(t, "sk-secondary", secondary.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", secondary.DefaultModel)
}
