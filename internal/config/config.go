package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	CORS   CORSConfig
	Model  ModelConfig
	Raster RasterConfig
	Fetch  FetchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelProviderConfig holds settings for a single extraction model provider.
type ModelProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ModelConfig holds extraction model settings with multi-provider support.
type ModelConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ModelProviderConfig `mapstructure:"primary"`
	Secondary ModelProviderConfig `mapstructure:"secondary"`
	Tertiary  ModelProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (m *ModelConfig) PrimaryConfig() *ModelProviderConfig {
	if m.Primary.Provider != "" {
		return &m.Primary
	}
	return &ModelProviderConfig{
		Provider:     m.Provider,
		APIKey:       m.APIKey,
		DefaultModel: m.DefaultModel,
		TimeoutSecs:  m.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (m *ModelConfig) SecondaryConfig() *ModelProviderConfig {
	if m.Secondary.Provider != "" {
		return &m.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (m *ModelConfig) TertiaryConfig() *ModelProviderConfig {
	if m.Tertiary.Provider != "" {
		return &m.Tertiary
	}
	return nil
}

// RasterConfig holds PDF rasterization settings.
type RasterConfig struct {
	DPI int `mapstructure:"dpi"`
}

// FetchConfig holds document intake settings (downloads and uploads).
type FetchConfig struct {
	TimeoutSecs   int   `mapstructure:"timeout_secs"`
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxFileSizeBytes returns the configured size cap in bytes.
func (f *FetchConfig) MaxFileSizeBytes() int64 {
	return f.MaxFileSizeMB * 1024 * 1024
}

// Load reads configuration from environment variables with the BILLSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Model defaults (legacy flat)
	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.default_model", "gemini-2.0-flash")
	v.SetDefault("model.timeout_secs", 120)

	// Model primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("model."+tier+".provider", "")
		v.SetDefault("model."+tier+".api_key", "")
		v.SetDefault("model."+tier+".default_model", "")
		v.SetDefault("model."+tier+".timeout_secs", 120)
	}

	// Raster defaults
	v.SetDefault("raster.dpi", 200)

	// Fetch defaults
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_file_size_mb", 50)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "BILLSCAN_SERVER_PORT",
		"server.read_timeout":           "BILLSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "BILLSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":            "BILLSCAN_SERVER_ENVIRONMENT",
		"log.level":                     "BILLSCAN_LOG_LEVEL",
		"log.format":                    "BILLSCAN_LOG_FORMAT",
		"cors.allowed_origins":          "BILLSCAN_CORS_ALLOWED_ORIGINS",
		"model.provider":                "BILLSCAN_MODEL_PROVIDER",
		"model.api_key":                 "BILLSCAN_MODEL_API_KEY",
		"model.default_model":           "BILLSCAN_MODEL_DEFAULT_MODEL",
		"model.timeout_secs":            "BILLSCAN_MODEL_TIMEOUT_SECS",
		"model.primary.provider":        "BILLSCAN_MODEL_PRIMARY_PROVIDER",
		"model.primary.api_key":         "BILLSCAN_MODEL_PRIMARY_API_KEY",
		"model.primary.default_model":   "BILLSCAN_MODEL_PRIMARY_DEFAULT_MODEL",
		"model.primary.timeout_secs":    "BILLSCAN_MODEL_PRIMARY_TIMEOUT_SECS",
		"model.secondary.provider":      "BILLSCAN_MODEL_SECONDARY_PROVIDER",
		"model.secondary.api_key":       "BILLSCAN_MODEL_SECONDARY_API_KEY",
		"model.secondary.default_model": "BILLSCAN_MODEL_SECONDARY_DEFAULT_MODEL",
		"model.secondary.timeout_secs":  "BILLSCAN_MODEL_SECONDARY_TIMEOUT_SECS",
		"model.tertiary.provider":       "BILLSCAN_MODEL_TERTIARY_PROVIDER",
		"model.tertiary.api_key":        "BILLSCAN_MODEL_TERTIARY_API_KEY",
		"model.tertiary.default_model":  "BILLSCAN_MODEL_TERTIARY_DEFAULT_MODEL",
		"model.tertiary.timeout_secs":   "BILLSCAN_MODEL_TERTIARY_TIMEOUT_SECS",
		"raster.dpi":                    "BILLSCAN_RASTER_DPI",
		"fetch.timeout_secs":            "BILLSCAN_FETCH_TIMEOUT_SECS",
		"fetch.max_file_size_mb":        "BILLSCAN_FETCH_MAX_FILE_SIZE_MB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Model = ModelConfig{
		Provider:     v.GetString("model.provider"),
		APIKey:       v.GetString("model.api_key"),
		DefaultModel: v.GetString("model.default_model"),
		TimeoutSecs:  v.GetInt("model.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Raster = RasterConfig{
		DPI: v.GetInt("raster.dpi"),
	}

	cfg.Fetch = FetchConfig{
		TimeoutSecs:   v.GetInt("fetch.timeout_secs"),
		MaxFileSizeMB: v.GetInt64("fetch.max_file_size_mb"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ModelProviderConfig {
	return ModelProviderConfig{
		Provider:     v.GetString("model." + tier + ".provider"),
		APIKey:       v.GetString("model." + tier + ".api_key"),
		DefaultModel: v.GetString("model." + tier + ".default_model"),
		TimeoutSecs:  v.GetInt("model." + tier + ".timeout_secs"),
	}
}
