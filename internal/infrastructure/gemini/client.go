package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"CryptoNewsRelay/internal/httpcall"
	"CryptoNewsRelay/internal/ports"
)

// Client talks to the Gemini generateContent API through the rate-limited
// caller, so throttled calls back off instead of failing outright.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	caller   *httpcall.Caller
}

var _ ports.TextGenerator = (*Client)(nil)

// NewClient builds a client from endpoint/model/key.
func NewClient(endpoint, model, apiKey string, caller *httpcall.Caller) *Client {
	return &Client{endpoint: endpoint, model: model, apiKey: apiKey, caller: caller}
}

// Generate submits a prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := c.caller.Call(ctx, httpcall.Request{
		Method: http.MethodPost,
		URL:    url,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("gemini call: %w", err)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
