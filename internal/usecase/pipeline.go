package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"CryptoNewsRelay/internal/dedupe"
	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

const snippetLen = 100

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.NewsSource
	Translator ports.Translator
	Store      ports.StateStore
	Publisher  ports.ItemPublisher
	Notifier   ports.Notifier
	Logger     *slog.Logger
	ChunkSize  int
	MaxHistory int
	RunTimeout time.Duration
}

// Pipeline orchestrates one batch run: fetch, translate, publish, merge,
// persist, summarize. A run always completes; per-item errors become
// recorded outcomes, never aborts.
type Pipeline struct {
	source     ports.NewsSource
	translator ports.Translator
	store      ports.StateStore
	publisher  ports.ItemPublisher
	notifier   ports.Notifier
	logger     *slog.Logger
	chunkSize  int
	maxHistory int
	runTimeout time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	chunkSize := deps.ChunkSize
	if chunkSize < 1 {
		chunkSize = 10
	}
	return &Pipeline{
		source:     deps.Source,
		translator: deps.Translator,
		store:      deps.Store,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		chunkSize:  chunkSize,
		maxHistory: deps.MaxHistory,
		runTimeout: deps.RunTimeout,
	}
}

// Run executes one pipeline pass and returns its summary. The only error
// it returns is a failed state write; everything else is recovered and
// reflected in the summary.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	if p.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.runTimeout)
		defer cancel()
	}

	summary := domain.NewRunSummary()

	history, err := p.store.Load(ctx)
	if err != nil {
		p.warn("history load failed, starting empty", "error", err)
		history = domain.RunHistory{}
	}

	fetched, err := p.source.Fetch(ctx)
	if err != nil {
		// Deliberate no-op success: the job must exit cleanly on every
		// scheduled invocation even when the source is down.
		p.warn("fetch failed, continuing with empty batch", "error", err)
		fetched = nil
	}
	summary.Fetched = len(fetched)

	fresh := p.selectFresh(fetched, history, &summary)

	processed := make([]domain.NewsItem, 0, len(fresh))
	for _, chunk := range chunks(fresh, p.chunkSize) {
		processed = append(processed, p.processChunk(ctx, chunk, &summary)...)
	}
	summary.NewItems = len(processed)

	if summary.Fetched == 0 {
		p.info("nothing fetched, state untouched")
		p.notify(ctx, summary)
		return summary, nil
	}

	merged := dedupe.Cap(dedupe.Merge(processed, history.Items), p.maxHistory)
	if err := p.store.Save(ctx, domain.RunHistory{Items: merged}); err != nil {
		summary.SaveError = err.Error()
		p.notify(ctx, summary)
		return summary, fmt.Errorf("persist history: %w", err)
	}
	summary.StateSaved = true

	p.info("run completed",
		"fetched", summary.Fetched,
		"new", summary.NewItems,
		"translated_ok", summary.TranslatedOK,
		"translation_failed", summary.TranslationsLost)

	p.notify(ctx, summary)
	return summary, nil
}

// selectFresh drops items without an identity and items already present
// in history; known items are never re-translated or re-published.
func (p *Pipeline) selectFresh(fetched []domain.NewsItem, history domain.RunHistory, summary *domain.RunSummary) []domain.NewsItem {
	known := make(map[string]struct{}, len(history.Items))
	for _, item := range history.Items {
		known[item.Identity()] = struct{}{}
	}

	fresh := make([]domain.NewsItem, 0, len(fetched))
	seen := map[string]struct{}{}
	for _, item := range fetched {
		id := item.Identity()
		if id == "" {
			summary.Discarded++
			p.debug("item without identity discarded", "title", item.Title)
			continue
		}
		if _, ok := known[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, item)
	}

	return fresh
}

// processChunk batch-translates one chunk field by field, then publishes
// each item and attaches its per-destination outcomes.
func (p *Pipeline) processChunk(ctx context.Context, chunk []domain.NewsItem, summary *domain.RunSummary) []domain.NewsItem {
	titles := make([]string, len(chunk))
	summaries := make([]string, len(chunk))
	bodies := make([]string, len(chunk))
	for i, item := range chunk {
		titles[i] = item.Title
		summaries[i] = item.Summary
		bodies[i] = item.Body
	}

	titleOut := p.translator.TranslateBatch(ctx, titles)
	summaryOut := p.translator.TranslateBatch(ctx, summaries)
	bodyOut := p.translator.TranslateBatch(ctx, bodies)

	processed := make([]domain.NewsItem, 0, len(chunk))
	for i, item := range chunk {
		applyField(&item, domain.FieldTitle, titleOut[i])
		applyField(&item, domain.FieldSummary, summaryOut[i])
		applyField(&item, domain.FieldBody, bodyOut[i])

		if len(item.FailedFields) == 0 {
			summary.TranslatedOK++
		} else {
			summary.TranslationsLost++
			p.warn("item partially translated", "url", item.SourceURL, "failed_fields", item.FailedFields)
		}

		for name, outcome := range p.publisher.Publish(ctx, item) {
			item.SetOutcome(name, outcome)
			summary.Count(name, outcome)
		}

		p.info("new item processed", "title", item.Title, "url", item.SourceURL, "snippet", snippet(item.Body))
		processed = append(processed, item)
	}

	return processed
}

// applyField replaces the field's text with the translation when one was
// produced. A failed field keeps the original text and is marked so
// destinations can gate on it.
func applyField(item *domain.NewsItem, field string, outcome domain.TranslationOutcome) {
	if outcome.Failed {
		item.FailedFields = append(item.FailedFields, field)
		return
	}
	if outcome.Text == "" {
		return
	}
	switch field {
	case domain.FieldTitle:
		item.Title = outcome.Text
	case domain.FieldSummary:
		item.Summary = outcome.Text
	case domain.FieldBody:
		item.Body = outcome.Text
	}
}

func (p *Pipeline) notify(ctx context.Context, summary domain.RunSummary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishSummary(ctx, summary); err != nil {
		p.warn("summary notification failed", "error", err)
	}
}

func chunks(items []domain.NewsItem, size int) [][]domain.NewsItem {
	if len(items) == 0 {
		return nil
	}
	var out [][]domain.NewsItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

func snippet(text string) string {
	if len(text) <= snippetLen {
		return text
	}
	return text[:snippetLen] + "..."
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
