package httpcall

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Kind classifies a failed outbound call.
type Kind string

const (
	// KindHTTP covers non-2xx responses other than throttling.
	KindHTTP Kind = "http"
	// KindNetwork covers transport-level failures.
	KindNetwork Kind = "network"
	// KindRateLimited marks a throttled call whose retries are exhausted.
	KindRateLimited Kind = "rate_limited"
)

// Error is the typed result of a failed call. It never escapes as a panic;
// callers decide whether it is fatal to a field, an item, or nothing.
type Error struct {
	Kind   Kind
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Detail)
}

// Policy bounds the retry behavior on throttling signals.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Request is an opaque outbound call descriptor. The body is held as bytes
// so every retry replays the identical payload.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response carries the fully read reply of a successful call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Caller wraps a single outbound HTTP call with bounded exponential
// backoff on HTTP 429. Any other failure returns immediately.
type Caller struct {
	client *http.Client
	policy Policy
	logger *slog.Logger
}

// New wires an HTTP client with a retry policy.
func New(client *http.Client, policy Policy, logger *slog.Logger) *Caller {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = time.Second
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 30 * time.Second
	}
	return &Caller{client: client, policy: policy, logger: logger}
}

// Call performs the request. On HTTP 429 it waits min(base*2^attempt, max)
// and retries up to the policy bound; the wait is cancellable through ctx.
// All failure paths return a typed *Error.
func (c *Caller) Call(ctx context.Context, req Request) (*Response, error) {
	var resp *Response

	operation := func() error {
		attempt, err := c.attempt(ctx, req)
		if err != nil {
			return err
		}
		resp = attempt
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.policy.BaseDelay
	policy.MaxInterval = c.policy.MaxDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		if c.logger != nil {
			c.logger.Warn("rate limited, backing off", "wait", wait, "url", req.URL, "error", err)
		}
	}

	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.policy.MaxAttempts-1)), ctx),
		notify,
	)
	if err != nil {
		if callErr, ok := err.(*Error); ok {
			return nil, callErr
		}
		if ctx.Err() != nil {
			return nil, &Error{Kind: KindNetwork, Detail: ctx.Err().Error()}
		}
		return nil, &Error{Kind: KindNetwork, Detail: err.Error()}
	}

	return resp, nil
}

func (c *Caller) attempt(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, backoff.Permanent(&Error{Kind: KindNetwork, Detail: err.Error()})
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, backoff.Permanent(&Error{Kind: KindNetwork, Detail: err.Error()})
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, backoff.Permanent(&Error{Kind: KindNetwork, Detail: fmt.Sprintf("read body: %v", err)})
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		// Retryable: the backoff loop decides whether attempts remain.
		return nil, &Error{Kind: KindRateLimited, Status: httpResp.StatusCode, Detail: "throttled"}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		detail := string(body)
		if len(detail) > 512 {
			detail = detail[:512]
		}
		return nil, backoff.Permanent(&Error{Kind: KindHTTP, Status: httpResp.StatusCode, Detail: detail})
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}
