package publish

import (
	"context"
	"log/slog"
	"sync"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// Publisher pushes one item to every registered destination. Destinations
// are independent: eligibility is evaluated before any network call, and
// one destination's failure never blocks another's attempt.
type Publisher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewPublisher wires the destination registry.
func NewPublisher(registry *Registry, logger *slog.Logger) *Publisher {
	return &Publisher{registry: registry, logger: logger}
}

// Publish attempts the item on all destinations concurrently and returns
// one outcome per destination name. Transport errors map to Failed, never
// propagate.
func (p *Publisher) Publish(ctx context.Context, item domain.NewsItem) map[string]domain.PublishOutcome {
	destinations := p.registry.All()
	outcomes := make(map[string]domain.PublishOutcome, len(destinations))
	if len(destinations) == 0 {
		return outcomes
	}

	type result struct {
		name    string
		outcome domain.PublishOutcome
	}

	results := make(chan result, len(destinations))

	var wg sync.WaitGroup
	for _, destination := range destinations {
		wg.Add(1)
		go func(dest ports.Destination) {
			defer wg.Done()
			results <- result{name: dest.Name(), outcome: p.attempt(ctx, dest, item)}
		}(destination)
	}

	wg.Wait()
	close(results)

	for r := range results {
		outcomes[r.name] = r.outcome
	}

	return outcomes
}

func (p *Publisher) attempt(ctx context.Context, dest ports.Destination, item domain.NewsItem) domain.PublishOutcome {
	if ok, reason := dest.Eligible(item); !ok {
		p.debug("item skipped", "destination", dest.Name(), "url", item.SourceURL, "reason", reason)
		return domain.Skipped(reason)
	}

	if err := dest.PublishItem(ctx, item); err != nil {
		if p.logger != nil {
			p.logger.Warn("publish failed", "destination", dest.Name(), "url", item.SourceURL, "error", err)
		}
		return domain.Failed(err.Error())
	}

	p.debug("item posted", "destination", dest.Name(), "url", item.SourceURL)
	return domain.Posted()
}

func (p *Publisher) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
