package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// Notifier sends run summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishSummary posts the run report as a Markdown message.
func (n *Notifier) PublishSummary(ctx context.Context, summary domain.RunSummary) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatSummary(summary))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func formatSummary(summary domain.RunSummary) string {
	var sb strings.Builder
	sb.WriteString("*Crypto news run*\n")
	sb.WriteString(fmt.Sprintf("Fetched: %d\n", summary.Fetched))
	sb.WriteString(fmt.Sprintf("Translated: %d ok, %d failed\n", summary.TranslatedOK, summary.TranslationsLost))
	sb.WriteString(fmt.Sprintf("New in history: %d\n", summary.NewItems))

	names := make([]string, 0, len(summary.Published))
	for name := range summary.Published {
		names = append(names, name)
	}
	for name := range summary.PublishFailed {
		if _, ok := summary.Published[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sb.WriteString(fmt.Sprintf("%s: %d posted, %d failed, %d skipped\n",
			name, summary.Published[name], summary.PublishFailed[name], summary.PublishSkipped[name]))
	}

	if summary.SaveError != "" {
		sb.WriteString(fmt.Sprintf("State save failed: %s\n", summary.SaveError))
	}

	return sb.String()
}
