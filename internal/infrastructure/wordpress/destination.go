package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// Destination publishes translated items as posts on a WordPress site.
// Eligibility requires a fully translated title and body; the featured
// image is best-effort and its failure degrades the post rather than
// aborting the item.
type Destination struct {
	baseURL     string
	username    string
	appPassword string
	status      string
	categoryID  int
	allowed     map[string]struct{}
	client      *http.Client
	logger      *slog.Logger
}

var _ ports.Destination = (*Destination)(nil)

// NewDestination wires the WordPress REST endpoints and domain allow-list.
func NewDestination(baseURL, username, appPassword, status string, categoryID int, allowedDomains []string, client *http.Client, logger *slog.Logger) *Destination {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if status == "" {
		status = "publish"
	}

	allowed := map[string]struct{}{}
	for _, domainName := range allowedDomains {
		normalized := normalizeDomain(domainName)
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return &Destination{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		username:    username,
		appPassword: appPassword,
		status:      status,
		categoryID:  categoryID,
		allowed:     allowed,
		client:      client,
		logger:      logger,
	}
}

// Name identifies the destination inside the publisher registry.
func (d *Destination) Name() string {
	return "wordpress"
}

// Eligible gates items before any network call: the origin domain must be
// on the allow-list (when one is configured) and title and body must have
// translated successfully.
func (d *Destination) Eligible(item domain.NewsItem) (bool, string) {
	if len(d.allowed) > 0 {
		if _, ok := d.allowed[normalizeDomain(item.OriginDomain)]; !ok {
			return false, "origin domain not allowed"
		}
	}
	if item.FieldFailed(domain.FieldTitle) || item.FieldFailed(domain.FieldBody) {
		return false, "translation incomplete"
	}
	if strings.TrimSpace(item.Title) == "" {
		return false, "no title"
	}
	if strings.TrimSpace(item.Body) == "" {
		return false, "no content"
	}
	return true, ""
}

// PublishItem uploads the featured image (best-effort) and creates the post.
func (d *Destination) PublishItem(ctx context.Context, item domain.NewsItem) error {
	var mediaID int
	if item.ImageURL != "" {
		id, err := d.uploadImage(ctx, item.ImageURL)
		if err != nil {
			// Degrade to a post without a featured image.
			if d.logger != nil {
				d.logger.Warn("featured image upload failed, posting without it", "image", item.ImageURL, "error", err)
			}
		} else {
			mediaID = id
		}
	}

	payload := map[string]any{
		"title":   item.Title,
		"content": item.Body,
		"status":  d.status,
	}
	if d.categoryID > 0 {
		payload["categories"] = []int{d.categoryID}
	}
	if mediaID > 0 {
		payload["featured_media"] = mediaID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal post payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(d.username, d.appPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wordpress error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

// uploadImage transfers the remote image into the WordPress media library
// and returns the media identifier for featured_media.
func (d *Destination) uploadImage(ctx context.Context, imageURL string) (int, error) {
	imgReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build image request: %w", err)
	}

	imgResp, err := d.client.Do(imgReq)
	if err != nil {
		return 0, fmt.Errorf("fetch image: %w", err)
	}
	defer imgResp.Body.Close()

	if imgResp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("image source returned %s", imgResp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(imgResp.Body, 10<<20))
	if err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/wp-json/wp/v2/media", bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("new media request: %w", err)
	}
	req.SetBasicAuth(d.username, d.appPassword)

	contentType := imgResp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", imageFilename(imageURL)))

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("media upload returned %s", resp.Status)
	}

	var media struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return 0, fmt.Errorf("decode media response: %w", err)
	}
	if media.ID == 0 {
		return 0, fmt.Errorf("media response without id")
	}

	return media.ID, nil
}

func imageFilename(imageURL string) string {
	name := path.Base(strings.Split(imageURL, "?")[0])
	if name == "" || name == "." || name == "/" {
		return "featured.jpg"
	}
	return name
}

func normalizeDomain(domainName string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domainName)), "www.")
}
