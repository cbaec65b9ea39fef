// Package config loads application settings from environment variables
// and an optional .env file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/plantry/core/internal/errors"
)

// Config carries all runtime settings for the local data layer.
type Config struct {
	DataDir            string `mapstructure:"data_dir"`
	LogLevel           string `mapstructure:"log_level"`
	QueueRetentionDays int    `mapstructure:"queue_retention_days"`
	SyncBatchSize      int    `mapstructure:"sync_batch_size"`
}

// Load reads settings from the environment with a PLANTRY_ prefix,
// loading a .env file first when one exists in the working directory.
// Missing values fall back to defaults.
func Load() (*Config, error) {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PLANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("queue_retention_days", 30)
	v.SetDefault("sync_batch_size", 50)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to parse configuration", err)
	}

	if cfg.QueueRetentionDays <= 0 {
		return nil, apperrors.New(apperrors.ErrInvalid, "queue_retention_days must be positive")
	}
	if cfg.SyncBatchSize <= 0 {
		return nil, apperrors.New(apperrors.ErrInvalid, "sync_batch_size must be positive")
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plantry"
	}
	return filepath.Join(home, ".plantry")
}
