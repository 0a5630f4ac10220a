package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// Destination publishes items to a Facebook page photo feed. The photos
// endpoint mandates an image, so items without one are skipped. The
// caption policy is lenient: the item's title is used as-is, translated
// or original.
type Destination struct {
	graphURL    string
	pageID      string
	accessToken string
	client      *http.Client
}

var _ ports.Destination = (*Destination)(nil)

// NewDestination wires the Graph API page endpoint.
func NewDestination(graphURL, pageID, accessToken string, client *http.Client) *Destination {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Destination{
		graphURL:    strings.TrimSuffix(graphURL, "/"),
		pageID:      pageID,
		accessToken: accessToken,
		client:      client,
	}
}

// Name identifies the destination inside the publisher registry.
func (d *Destination) Name() string {
	return "facebook"
}

// Eligible requires an image; the endpoint cannot post without one.
func (d *Destination) Eligible(item domain.NewsItem) (bool, string) {
	if item.ImageURL == "" {
		return false, "image required"
	}
	if strings.TrimSpace(item.Title) == "" {
		return false, "no title"
	}
	return true, ""
}

// PublishItem posts the image with a caption built from the item.
func (d *Destination) PublishItem(ctx context.Context, item domain.NewsItem) error {
	endpoint := fmt.Sprintf("%s/%s/photos", d.graphURL, d.pageID)

	form := url.Values{}
	form.Set("url", item.ImageURL)
	form.Set("caption", buildCaption(item))
	form.Set("access_token", d.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("facebook error: %s", resp.Status)
	}

	return nil
}

func buildCaption(item domain.NewsItem) string {
	var sb strings.Builder
	sb.WriteString(item.Title)
	if summary := strings.TrimSpace(item.Summary); summary != "" {
		sb.WriteString("\n\n")
		sb.WriteString(summary)
	}
	if item.SourceURL != "" {
		sb.WriteString("\n\n")
		sb.WriteString(item.SourceURL)
	}
	return sb.String()
}
