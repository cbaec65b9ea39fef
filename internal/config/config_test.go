package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.DataDir == "" {
		t.Error("expected a default data directory")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.QueueRetentionDays != 30 {
		t.Errorf("expected default retention of 30 days, got %d", cfg.QueueRetentionDays)
	}
	if cfg.SyncBatchSize != 50 {
		t.Errorf("expected default batch size 50, got %d", cfg.SyncBatchSize)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PLANTRY_DATA_DIR", "/tmp/plantry-test")
	t.Setenv("PLANTRY_LOG_LEVEL", "debug")
	t.Setenv("PLANTRY_QUEUE_RETENTION_DAYS", "7")
	t.Setenv("PLANTRY_SYNC_BATCH_SIZE", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.DataDir != "/tmp/plantry-test" {
		t.Errorf("expected data dir from env, got %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %q", cfg.LogLevel)
	}
	if cfg.QueueRetentionDays != 7 {
		t.Errorf("expected 7 day retention, got %d", cfg.QueueRetentionDays)
	}
	if cfg.SyncBatchSize != 100 {
		t.Errorf("expected batch size 100, got %d", cfg.SyncBatchSize)
	}
}

func TestLoadRejectsNonPositiveSettings(t *testing.T) {
	t.Setenv("PLANTRY_QUEUE_RETENTION_DAYS", "0")

	if _, err := Load(); err == nil {
		t.Error("expected zero retention to be rejected")
	}
}
