// Package config loads the service configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pitch_backend/internal/feature/analyzer/adapters/gemini"
	"pitch_backend/internal/platform/db"
	"pitch_backend/internal/platform/externalapi/llmgateway"
	"pitch_backend/internal/platform/redis"
)

// LLM providers.
const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

// Storage backends.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Config is the full service configuration.
type Config struct {
	Port               string
	DB                 db.Config
	Redis              redis.Config
	JWT                JWTConfig
	LLM                LLMConfig
	Storage            StorageConfig
	VisionEnabled      bool
	Sweep              SweepConfig
	AnalysisTimeout    time.Duration
	RateLimitPerMinute int
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// LLMConfig selects and configures the language model provider.
type LLMConfig struct {
	Provider string
	Gateway  llmgateway.Config
	Gemini   gemini.Config
}

// StorageConfig selects where uploaded pitch files are kept.
type StorageConfig struct {
	Backend  string
	LocalDir string
	Bucket   string
}

// SweepConfig drives the stale-analysis sweeper.
type SweepConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("LLM_PROVIDER", ProviderGateway)
	v.SetDefault("LLM_GATEWAY_BASE_URL", llmgateway.DefaultBaseURL)
	v.SetDefault("LLM_MODEL", llmgateway.DefaultModel)
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("GEMINI_MODEL", gemini.DefaultModel)
	v.SetDefault("STORAGE_BACKEND", StorageLocal)
	v.SetDefault("STORAGE_LOCAL_DIR", "./data/pitch-files")
	v.SetDefault("STORAGE_BUCKET", "pitch-files")
	v.SetDefault("VISION_ENABLED", false)
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("SWEEP_TIMEOUT", "15m")
	v.SetDefault("ANALYSIS_TIMEOUT", "90s")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 10)
}

// Load reads .env (if any) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port: v.GetString("PORT"),
		DB: db.Config{
			URL:          v.GetString("DATABASE_URL"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			InstanceName: v.GetString("INSTANCE_CONNECTION_NAME"),
			Migrate:      v.GetBool("RUN_MIGRATIONS"),
		},
		Redis: redis.Config{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
			Gateway: llmgateway.Config{
				APIKey:  v.GetString("LLM_API_KEY"),
				BaseURL: v.GetString("LLM_GATEWAY_BASE_URL"),
				Model:   v.GetString("LLM_MODEL"),
				Timeout: v.GetDuration("LLM_TIMEOUT"),
			},
			Gemini: gemini.Config{
				APIKey: v.GetString("GEMINI_API_KEY"),
				Model:  v.GetString("GEMINI_MODEL"),
			},
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			LocalDir: v.GetString("STORAGE_LOCAL_DIR"),
			Bucket:   v.GetString("STORAGE_BUCKET"),
		},
		VisionEnabled: v.GetBool("VISION_ENABLED"),
		Sweep: SweepConfig{
			Interval: v.GetDuration("SWEEP_INTERVAL"),
			Timeout:  v.GetDuration("SWEEP_TIMEOUT"),
		},
		AnalysisTimeout:    v.GetDuration("ANALYSIS_TIMEOUT"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWT.Expiration)
	}
	switch c.LLM.Provider {
	case ProviderGateway, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	switch c.Storage.Backend {
	case StorageLocal, StorageGCS:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Sweep.Interval <= 0 || c.Sweep.Timeout <= 0 {
		return errors.New("SWEEP_INTERVAL and SWEEP_TIMEOUT must be positive")
	}
	if c.AnalysisTimeout <= 0 {
		return errors.New("ANALYSIS_TIMEOUT must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}
