package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	API    APIConfig    `koanf:"api"`
	Store  StoreConfig  `koanf:"store"`
	Cache  CacheConfig  `koanf:"cache"`
	Logger LoggerConfig `koanf:"logger"`
}

type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"required"`
	Retry   RetryConfig   `koanf:"retry"`
}

// RetryConfig bounds the automatic retry of transient read failures.
type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries" validate:"min=0"`
	BaseDelay  time.Duration `koanf:"base_delay"`
}

type StoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type CacheConfig struct {
	CacheTime     time.Duration `koanf:"cache_time" validate:"required"`
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

// defaults are layered under the environment, so only the API base URL is
// strictly required from outside.
func defaults() map[string]interface{} {
	home, _ := os.UserHomeDir()
	return map[string]interface{}{
		"api.timeout":           "30s",
		"api.retry.max_retries": 3,
		"api.retry.base_delay":  "250ms",
		"store.path":            filepath.Join(home, ".halver", "store"),
		"cache.cache_time":      "5m",
		"cache.sweep_interval":  "1m",
		"logger.level":          "info",
	}
}

// LoadConfig resolves configuration once at process start from HALVER_*
// environment variables. Double underscore separates sections, e.g.
// HALVER_API__BASE_URL.
func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider("HALVER_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "HALVER_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	if err := k.Unmarshal("", mainConfig); err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	if err := validate.Struct(mainConfig); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// NewLogger builds the process logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
