package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := defaultConfig()
	cfg.Source.APIKey = "cp-key"
	cfg.Translator.APIKey = "gm-key"
	return cfg
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.Source.APIKey = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingSourceKey) {
		t.Fatalf("expected ErrMissingSourceKey, got %v", err)
	}

	cfg = validConfig()
	cfg.Translator.APIKey = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingTranslatorKey) {
		t.Fatalf("expected ErrMissingTranslatorKey, got %v", err)
	}

	cfg = validConfig()
	cfg.State.Path = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingStatePath) {
		t.Fatalf("expected ErrMissingStatePath, got %v", err)
	}

	cfg = validConfig()
	cfg.Translator.Retry.MaxAttempts = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxAttempts) {
		t.Fatalf("expected ErrInvalidMaxAttempts, got %v", err)
	}

	cfg = validConfig()
	cfg.Translator.ChunkSize = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidChunkSize) {
		t.Fatalf("expected ErrInvalidChunkSize, got %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv(cryptoPanicKeyEnv, "cp-from-env")
	t.Setenv(geminiKeyEnv, "gm-from-env")
	t.Setenv(statePathEnv, "/tmp/news.json")
	t.Setenv(telegramTokenEnv, "bot-token")
	t.Setenv(telegramChatIDEnv, "chat-42")
	t.Setenv(configPathEnv, "")

	cfg := Load()

	if cfg.Source.APIKey != "cp-from-env" {
		t.Fatalf("source key override lost: %q", cfg.Source.APIKey)
	}
	if cfg.Translator.APIKey != "gm-from-env" {
		t.Fatalf("translator key override lost: %q", cfg.Translator.APIKey)
	}
	if cfg.State.Path != "/tmp/news.json" {
		t.Fatalf("state path override lost: %q", cfg.State.Path)
	}
	if cfg.Notifications.Telegram.BotToken != "bot-token" || cfg.Notifications.Telegram.ChatID != "chat-42" {
		t.Fatalf("telegram overrides lost: %+v", cfg.Notifications.Telegram)
	}
}

func TestLoadMergesYAMLFile(t *testing.T) {
	raw := `
source:
  filters: ["hot"]
translator:
  targetLanguage: Indonesian
  chunkSize: 4
state:
  maxEntries: 50
wordpress:
  baseUrl: https://cms.example.com
  username: editor
  appPassword: secret
  allowedDomains: [coindesk.com]
scheduler:
  enabled: true
  intervalMin: 30
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if len(cfg.Source.Filters) != 1 || cfg.Source.Filters[0] != "hot" {
		t.Fatalf("filters not merged: %v", cfg.Source.Filters)
	}
	if cfg.Translator.TargetLanguage != "Indonesian" || cfg.Translator.ChunkSize != 4 {
		t.Fatalf("translator settings not merged: %+v", cfg.Translator)
	}
	if cfg.State.MaxEntries != 50 {
		t.Fatalf("state cap not merged: %d", cfg.State.MaxEntries)
	}
	if !cfg.WordPress.Configured() || len(cfg.WordPress.AllowedDomains) != 1 {
		t.Fatalf("wordpress not merged: %+v", cfg.WordPress)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.IntervalMin != 30 {
		t.Fatalf("scheduler not merged: %+v", cfg.Scheduler)
	}
	// Defaults survive where the file is silent.
	if cfg.Translator.Retry.MaxAttempts != 3 {
		t.Fatalf("retry defaults lost: %+v", cfg.Translator.Retry)
	}
}
