package ports

import (
	"context"

	"CryptoNewsRelay/internal/domain"
)

// NewsSource pulls fresh items from the upstream aggregator.
type NewsSource interface {
	Fetch(ctx context.Context) ([]domain.NewsItem, error)
}

// Translator turns source-language text into target-language text.
// Implementations never return an error: persistent failure becomes a
// Failed outcome at field granularity.
type Translator interface {
	TranslateField(ctx context.Context, text string) domain.TranslationOutcome
	TranslateBatch(ctx context.Context, texts []string) []domain.TranslationOutcome
}

// TextGenerator is the raw generative backend a Translator builds on.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StateStore owns the durable run history.
type StateStore interface {
	Load(ctx context.Context) (domain.RunHistory, error)
	Save(ctx context.Context, history domain.RunHistory) error
}

// Destination is one downstream publishing target with its own
// eligibility rules and independent outcome.
type Destination interface {
	Name() string
	// Eligible is evaluated before any network call; the reason is
	// recorded when the item is skipped.
	Eligible(item domain.NewsItem) (bool, string)
	PublishItem(ctx context.Context, item domain.NewsItem) error
}

// ItemPublisher pushes one item to every configured destination and
// reports one outcome per destination name.
type ItemPublisher interface {
	Publish(ctx context.Context, item domain.NewsItem) map[string]domain.PublishOutcome
}

// Notifier pushes the run summary to an operator channel (Telegram, etc.).
type Notifier interface {
	PublishSummary(ctx context.Context, summary domain.RunSummary) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func()) error
	Stop(ctx context.Context) error
}
