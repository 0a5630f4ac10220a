package cryptopanic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// Source pulls posts from the CryptoPanic aggregator API, one request per
// configured filter (e.g. "hot" before the general feed), and enriches
// each post with the full article body when a content fetcher is wired.
type Source struct {
	baseURL string
	apiKey  string
	filters []string
	client  *http.Client
	content *ContentFetcher
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.NewsSource = (*Source)(nil)

// NewSource wires the aggregator endpoint. A nil content fetcher disables
// full-article scraping.
func NewSource(baseURL, apiKey string, filters []string, client *http.Client, content *ContentFetcher, logger *slog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if len(filters) == 0 {
		filters = []string{""}
	}
	return &Source{
		baseURL: baseURL,
		apiKey:  apiKey,
		filters: filters,
		client:  client,
		content: content,
		logger:  logger,
		now:     time.Now,
	}
}

type apiPost struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	Source      struct {
		Title  string `json:"title"`
		Domain string `json:"domain"`
		URL    string `json:"url"`
	} `json:"source"`
	Metadata struct {
		Image       string `json:"image"`
		Description string `json:"description"`
	} `json:"metadata"`
}

// Fetch walks the configured filters in order and returns the combined
// posts, first occurrence of a source URL winning across filters.
func (s *Source) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	var items []domain.NewsItem
	seen := map[string]struct{}{}

	for _, filter := range s.filters {
		posts, err := s.fetchFilter(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("fetch filter %q: %w", filter, err)
		}

		for _, post := range posts {
			item := s.toItem(post)
			id := item.Identity()
			if id == "" {
				s.debug("post without source url dropped", "title", post.Title)
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			if s.content != nil {
				body, err := s.content.FetchContent(ctx, id)
				if err != nil {
					s.debug("article content unavailable", "url", id, "error", err)
				} else {
					item.Body = body
				}
			}

			items = append(items, item)
		}
	}

	return items, nil
}

func (s *Source) fetchFilter(ctx context.Context, filter string) ([]apiPost, error) {
	endpoint, err := s.buildURL(filter)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("aggregator returned %s", resp.Status)
	}

	var payload struct {
		Results []apiPost `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	s.debug("filter fetched", "filter", filter, "posts", len(payload.Results))
	return payload.Results, nil
}

func (s *Source) buildURL(filter string) (string, error) {
	parsed, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", s.baseURL, err)
	}

	query := parsed.Query()
	query.Set("auth_token", s.apiKey)
	query.Set("metadata", "true")
	query.Set("approved", "true")
	if filter != "" {
		query.Set("filter", filter)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (s *Source) toItem(post apiPost) domain.NewsItem {
	summary := post.Description
	if summary == "" {
		summary = post.Metadata.Description
	}

	publishedAt := s.now().UTC()
	if post.PublishedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, post.PublishedAt); err == nil {
			publishedAt = parsed
		}
	}

	origin := post.Source.Domain
	if origin == "" {
		origin = domain.DomainOf(post.Source.URL)
	}

	return domain.NewsItem{
		Title:        post.Title,
		Summary:      summary,
		ImageURL:     post.Metadata.Image,
		SourceURL:    post.Source.URL,
		OriginDomain: origin,
		PublishedAt:  publishedAt,
	}
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
