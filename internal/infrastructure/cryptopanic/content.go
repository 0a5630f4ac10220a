package cryptopanic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// browserUserAgent mimics a desktop browser; many news sites block
// default Go client agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ContentFetcher downloads a source article page and extracts its
// paragraph text.
type ContentFetcher struct {
	client *http.Client
}

// NewContentFetcher wires an HTTP client for article pages.
func NewContentFetcher(client *http.Client) *ContentFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ContentFetcher{client: client}
}

// FetchContent returns the joined <p> texts of the page at url.
func (f *ContentFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no source url provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return "", fmt.Errorf("access to source is forbidden")
	case http.StatusNotFound:
		return "", fmt.Errorf("source content not found")
	default:
		return "", fmt.Errorf("source returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(i int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, " "), nil
}
