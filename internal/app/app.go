package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"CryptoNewsRelay/internal/config"
	"CryptoNewsRelay/internal/httpcall"
	"CryptoNewsRelay/internal/infrastructure/cryptopanic"
	"CryptoNewsRelay/internal/infrastructure/facebook"
	"CryptoNewsRelay/internal/infrastructure/gemini"
	"CryptoNewsRelay/internal/infrastructure/scheduler"
	"CryptoNewsRelay/internal/infrastructure/telegram"
	"CryptoNewsRelay/internal/infrastructure/wordpress"
	"CryptoNewsRelay/internal/logging"
	"CryptoNewsRelay/internal/ports"
	"CryptoNewsRelay/internal/publish"
	"CryptoNewsRelay/internal/state"
	"CryptoNewsRelay/internal/translate"
	"CryptoNewsRelay/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	var content *cryptopanic.ContentFetcher
	if cfg.Source.FetchContent {
		content = cryptopanic.NewContentFetcher(nil)
	}
	source := cryptopanic.NewSource(
		cfg.Source.BaseURL,
		cfg.Source.APIKey,
		cfg.Source.Filters,
		&http.Client{Timeout: time.Duration(cfg.Source.TimeoutSec) * time.Second},
		content,
		logging.ForComponent(baseLogger, "source"),
	)

	caller := httpcall.New(nil, httpcall.Policy{
		MaxAttempts: cfg.Translator.Retry.MaxAttempts,
		BaseDelay:   cfg.Translator.Retry.BaseDelay(),
		MaxDelay:    cfg.Translator.Retry.MaxDelay(),
	}, logging.ForComponent(baseLogger, "caller"))

	generator := gemini.NewClient(cfg.Translator.Endpoint, cfg.Translator.Model, cfg.Translator.APIKey, caller)
	translator := translate.NewService(generator, cfg.Translator.TargetLanguage, logging.ForComponent(baseLogger, "translator"))

	registry := publish.NewRegistry()
	if cfg.WordPress.Configured() {
		registry.Register(wordpress.NewDestination(
			cfg.WordPress.BaseURL,
			cfg.WordPress.Username,
			cfg.WordPress.AppPassword,
			cfg.WordPress.Status,
			cfg.WordPress.CategoryID,
			cfg.WordPress.AllowedDomains,
			nil,
			logging.ForComponent(baseLogger, "wordpress"),
		))
	}
	if cfg.Facebook.Configured() {
		registry.Register(facebook.NewDestination(cfg.Facebook.GraphURL, cfg.Facebook.PageID, cfg.Facebook.AccessToken, nil))
	}
	publisher := publish.NewPublisher(registry, logging.ForComponent(baseLogger, "publisher"))

	store := state.NewFileStore(cfg.State.Path, logging.ForComponent(baseLogger, "state"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Translator: translator,
		Store:      store,
		Publisher:  publisher,
		Notifier:   notifier,
		Logger:     logging.ForComponent(baseLogger, "pipeline"),
		ChunkSize:  cfg.Translator.ChunkSize,
		MaxHistory: cfg.State.MaxEntries,
		RunTimeout: cfg.Run.Timeout(),
	})

	return &Application{cfg: cfg, pipeline: pipeline, logger: baseLogger}
}

// Run executes a single pipeline pass, or keeps running on the configured
// interval when the scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if !a.cfg.Scheduler.Enabled {
		_, err := a.pipeline.Run(ctx)
		return err
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return runner.Stop(context.Background())
}
