package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Data      DataConfig
	Storage   StorageConfig
	Extractor ExtractorConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// UploadConfig holds uploaded-document constraints.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// DataConfig holds flat-file store locations.
type DataConfig struct {
	Dir       string `mapstructure:"dir"`
	BackupDir string `mapstructure:"backup_dir"`
}

// StorageConfig selects and configures the uploaded-document object store.
type StorageConfig struct {
	Provider string   `mapstructure:"provider"` // "local" or "s3"
	LocalDir string   `mapstructure:"local_dir"`
	S3       S3Config `mapstructure:"s3"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// ExtractorProviderConfig holds settings for a single vision-LLM provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds invoice extraction settings with primary/secondary
// provider support.
type ExtractorConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	BatchConcurrency int `mapstructure:"batch_concurrency"`

	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, falling back to the
// legacy flat fields.
func (e *ExtractorConfig) PrimaryConfig() *ExtractorProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return &ExtractorProviderConfig{
		Provider:     e.Provider,
		APIKey:       e.APIKey,
		DefaultModel: e.DefaultModel,
		MaxRetries:   e.MaxRetries,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the INVODEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVODEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Upload defaults (16 MiB ceiling)
	v.SetDefault("upload.max_file_size_mb", 16)

	// Data defaults
	v.SetDefault("data.dir", "./data/csv")
	v.SetDefault("data.backup_dir", "./data/backups")

	// Storage defaults
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_dir", "./data/uploads")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "invodex-uploads")
	v.SetDefault("storage.s3.endpoint", "")

	// Extractor defaults (legacy flat)
	v.SetDefault("extractor.provider", "openai")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "gpt-4o-2024-11-20")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.batch_concurrency", 2)

	// Extractor primary/secondary defaults
	v.SetDefault("extractor.primary.provider", "")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "")
	v.SetDefault("extractor.primary.max_retries", 2)
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.max_retries", 2)
	v.SetDefault("extractor.secondary.timeout_secs", 120)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "INVODEX_SERVER_PORT",
		"server.read_timeout":               "INVODEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "INVODEX_SERVER_WRITE_TIMEOUT",
		"server.environment":                "INVODEX_SERVER_ENVIRONMENT",
		"upload.max_file_size_mb":           "INVODEX_UPLOAD_MAX_FILE_SIZE_MB",
		"data.dir":                          "INVODEX_DATA_DIR",
		"data.backup_dir":                   "INVODEX_DATA_BACKUP_DIR",
		"storage.provider":                  "INVODEX_STORAGE_PROVIDER",
		"storage.local_dir":                 "INVODEX_STORAGE_LOCAL_DIR",
		"storage.s3.region":                 "INVODEX_STORAGE_S3_REGION",
		"storage.s3.bucket":                 "INVODEX_STORAGE_S3_BUCKET",
		"storage.s3.endpoint":               "INVODEX_STORAGE_S3_ENDPOINT",
		"storage.s3.access_key":             "INVODEX_STORAGE_S3_ACCESS_KEY",
		"storage.s3.secret_key":             "INVODEX_STORAGE_S3_SECRET_KEY",
		"extractor.provider":                "INVODEX_EXTRACTOR_PROVIDER",
		"extractor.api_key":                 "INVODEX_EXTRACTOR_API_KEY",
		"extractor.default_model":           "INVODEX_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":             "INVODEX_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":            "INVODEX_EXTRACTOR_TIMEOUT_SECS",
		"extractor.batch_concurrency":       "INVODEX_EXTRACTOR_BATCH_CONCURRENCY",
		"extractor.primary.provider":        "INVODEX_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":         "INVODEX_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":   "INVODEX_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.max_retries":     "INVODEX_EXTRACTOR_PRIMARY_MAX_RETRIES",
		"extractor.primary.timeout_secs":    "INVODEX_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":      "INVODEX_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":       "INVODEX_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model": "INVODEX_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.max_retries":   "INVODEX_EXTRACTOR_SECONDARY_MAX_RETRIES",
		"extractor.secondary.timeout_secs":  "INVODEX_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"cors.allowed_origins":              "INVODEX_CORS_ALLOWED_ORIGINS",
		"log.level":                         "INVODEX_LOG_LEVEL",
		"log.format":                        "INVODEX_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVODEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVODEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Data = DataConfig{
		Dir:       v.GetString("data.dir"),
		BackupDir: v.GetString("data.backup_dir"),
	}
	cfg.Storage = StorageConfig{
		Provider: v.GetString("storage.provider"),
		LocalDir: v.GetString("storage.local_dir"),
		S3: S3Config{
			Region:    v.GetString("storage.s3.region"),
			Bucket:    v.GetString("storage.s3.bucket"),
			Endpoint:  v.GetString("storage.s3.endpoint"),
			AccessKey: v.GetString("storage.s3.access_key"),
			SecretKey: v.GetString("storage.s3.secret_key"),
		},
	}
	cfg.Extractor = ExtractorConfig{
		Provider:         v.GetString("extractor.provider"),
		APIKey:           v.GetString("extractor.api_key"),
		DefaultModel:     v.GetString("extractor.default_model"),
		MaxRetries:       v.GetInt("extractor.max_retries"),
		TimeoutSecs:      v.GetInt("extractor.timeout_secs"),
		BatchConcurrency: v.GetInt("extractor.batch_concurrency"),
		Primary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.primary.provider"),
			APIKey:       v.GetString("extractor.primary.api_key"),
			DefaultModel: v.GetString("extractor.primary.default_model"),
			MaxRetries:   v.GetInt("extractor.primary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.primary.timeout_secs"),
		},
		Secondary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.secondary.provider"),
			APIKey:       v.GetString("extractor.secondary.api_key"),
			DefaultModel: v.GetString("extractor.secondary.default_model"),
			MaxRetries:   v.GetInt("extractor.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("extractor.secondary.timeout_secs"),
		},
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}

// MaxUploadBytes returns the configured upload ceiling in bytes.
func (u *UploadConfig) MaxUploadBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}
