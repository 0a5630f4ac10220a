package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "CRYPTO_NEWS_RELAY_CONFIG"
	cryptoPanicKeyEnv    = "CRYPTOPANIC_API_KEY"
	geminiKeyEnv         = "GEMINI_API_KEY"
	statePathEnv         = "NEWS_STATE_PATH"
	wordpressUserEnv     = "WORDPRESS_USERNAME"
	wordpressPasswordEnv = "WORDPRESS_APP_PASSWORD"
	facebookPageEnv      = "FACEBOOK_PAGE_ID"
	facebookTokenEnv     = "FACEBOOK_ACCESS_TOKEN"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
)

// Validation errors for required pre-run configuration.
var (
	ErrMissingSourceKey     = errors.New("source api key is required")
	ErrMissingTranslatorKey = errors.New("translator api key is required")
	ErrMissingStatePath     = errors.New("state file path is required")
	ErrInvalidMaxAttempts   = errors.New("retry maxAttempts must be at least 1")
	ErrInvalidChunkSize     = errors.New("translator chunkSize must be at least 1")
)

// Config holds every setting required across the application.
type Config struct {
	Source        SourceConfig       `yaml:"source"`
	Translator    TranslatorConfig   `yaml:"translator"`
	State         StateConfig        `yaml:"state"`
	WordPress     WordPressConfig    `yaml:"wordpress"`
	Facebook      FacebookConfig     `yaml:"facebook"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
	Run           RunConfig          `yaml:"run"`
}

// SourceConfig describes the CryptoPanic upstream.
type SourceConfig struct {
	BaseURL      string   `yaml:"baseUrl"`
	APIKey       string   `yaml:"apiKey"`
	Filters      []string `yaml:"filters"`
	FetchContent bool     `yaml:"fetchContent"`
	TimeoutSec   int      `yaml:"timeoutSec"`
}

// RetryConfig bounds backoff against the rate-limited translation backend.
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	BaseDelayMs int `yaml:"baseDelayMs"`
	MaxDelayMs  int `yaml:"maxDelayMs"`
}

// BaseDelay returns the first backoff interval.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the backoff cap.
func (r RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMs) * time.Millisecond
}

// TranslatorConfig defines how to contact the generative translation API.
type TranslatorConfig struct {
	Endpoint       string      `yaml:"endpoint"`
	Model          string      `yaml:"model"`
	APIKey         string      `yaml:"apiKey"`
	TargetLanguage string      `yaml:"targetLanguage"`
	ChunkSize      int         `yaml:"chunkSize"`
	Retry          RetryConfig `yaml:"retry"`
}

// StateConfig locates the durable history file.
type StateConfig struct {
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"maxEntries"`
}

// WordPressConfig wires the CMS destination. Empty BaseURL disables it.
type WordPressConfig struct {
	BaseURL        string   `yaml:"baseUrl"`
	Username       string   `yaml:"username"`
	AppPassword    string   `yaml:"appPassword"`
	Status         string   `yaml:"status"`
	CategoryID     int      `yaml:"categoryId"`
	AllowedDomains []string `yaml:"allowedDomains"`
}

// Configured reports whether the destination should be registered.
func (w WordPressConfig) Configured() bool {
	return w.BaseURL != "" && w.Username != "" && w.AppPassword != ""
}

// FacebookConfig wires the page photo-feed destination.
type FacebookConfig struct {
	GraphURL    string `yaml:"graphUrl"`
	PageID      string `yaml:"pageId"`
	AccessToken string `yaml:"accessToken"`
}

// Configured reports whether the destination should be registered.
func (f FacebookConfig) Configured() bool {
	return f.PageID != "" && f.AccessToken != ""
}

// NotificationConfig encapsulates outbound operator channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig controls recurring runs; disabled means single-shot.
type SchedulerConfig struct {
	Enabled     bool `yaml:"enabled"`
	IntervalMin int  `yaml:"intervalMin"`
}

// Interval resolves the configured run cadence.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalMin <= 0 {
		return time.Hour
	}
	return time.Duration(s.IntervalMin) * time.Minute
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RunConfig bounds a single pipeline execution.
type RunConfig struct {
	TimeoutSec int `yaml:"timeoutSec"`
}

// Timeout returns the overall run deadline; zero disables it.
func (r RunConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate rejects configurations that cannot start a run. A failure here
// is fatal before any network call is made.
func (c Config) Validate() error {
	if c.Source.APIKey == "" {
		return ErrMissingSourceKey
	}
	if c.Translator.APIKey == "" {
		return ErrMissingTranslatorKey
	}
	if c.State.Path == "" {
		return ErrMissingStatePath
	}
	if c.Translator.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxAttempts, c.Translator.Retry.MaxAttempts)
	}
	if c.Translator.ChunkSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidChunkSize, c.Translator.ChunkSize)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(cryptoPanicKeyEnv); v != "" {
		c.Source.APIKey = v
	}
	if v := os.Getenv(geminiKeyEnv); v != "" {
		c.Translator.APIKey = v
	}
	if v := os.Getenv(statePathEnv); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv(wordpressUserEnv); v != "" {
		c.WordPress.Username = v
	}
	if v := os.Getenv(wordpressPasswordEnv); v != "" {
		c.WordPress.AppPassword = v
	}
	if v := os.Getenv(facebookPageEnv); v != "" {
		c.Facebook.PageID = v
	}
	if v := os.Getenv(facebookTokenEnv); v != "" {
		c.Facebook.AccessToken = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Source.BaseURL != "" {
		base.Source.BaseURL = override.Source.BaseURL
	}
	if override.Source.APIKey != "" {
		base.Source.APIKey = override.Source.APIKey
	}
	if len(override.Source.Filters) > 0 {
		base.Source.Filters = override.Source.Filters
	}
	if override.Source.FetchContent {
		base.Source.FetchContent = true
	}
	if override.Source.TimeoutSec > 0 {
		base.Source.TimeoutSec = override.Source.TimeoutSec
	}

	if override.Translator.Endpoint != "" {
		base.Translator.Endpoint = override.Translator.Endpoint
	}
	if override.Translator.Model != "" {
		base.Translator.Model = override.Translator.Model
	}
	if override.Translator.APIKey != "" {
		base.Translator.APIKey = override.Translator.APIKey
	}
	if override.Translator.TargetLanguage != "" {
		base.Translator.TargetLanguage = override.Translator.TargetLanguage
	}
	if override.Translator.ChunkSize > 0 {
		base.Translator.ChunkSize = override.Translator.ChunkSize
	}
	if override.Translator.Retry.MaxAttempts > 0 {
		base.Translator.Retry.MaxAttempts = override.Translator.Retry.MaxAttempts
	}
	if override.Translator.Retry.BaseDelayMs > 0 {
		base.Translator.Retry.BaseDelayMs = override.Translator.Retry.BaseDelayMs
	}
	if override.Translator.Retry.MaxDelayMs > 0 {
		base.Translator.Retry.MaxDelayMs = override.Translator.Retry.MaxDelayMs
	}

	if override.State.Path != "" {
		base.State.Path = override.State.Path
	}
	if override.State.MaxEntries > 0 {
		base.State.MaxEntries = override.State.MaxEntries
	}

	if override.WordPress.BaseURL != "" {
		base.WordPress = override.WordPress
	}
	if override.Facebook.PageID != "" {
		base.Facebook = override.Facebook
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.IntervalMin > 0 {
		base.Scheduler.IntervalMin = override.Scheduler.IntervalMin
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Run.TimeoutSec > 0 {
		base.Run.TimeoutSec = override.Run.TimeoutSec
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Source: SourceConfig{
			BaseURL:      "https://cryptopanic.com/api/v1/posts/",
			Filters:      []string{"hot", ""},
			FetchContent: true,
			TimeoutSec:   15,
		},
		Translator: TranslatorConfig{
			Endpoint:       "https://generativelanguage.googleapis.com/v1beta",
			Model:          "gemini-2.0-flash",
			TargetLanguage: "Malay",
			ChunkSize:      10,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelayMs: 2000,
				MaxDelayMs:  30000,
			},
		},
		State: StateConfig{
			Path:       "translated_news.json",
			MaxEntries: 500,
		},
		WordPress: WordPressConfig{
			Status: "publish",
		},
		Facebook: FacebookConfig{
			GraphURL: "https://graph.facebook.com/v19.0",
		},
		Scheduler: SchedulerConfig{IntervalMin: 60},
		Logging:   LoggingConfig{Level: "info"},
		Run:       RunConfig{TimeoutSec: 600},
	}
}
