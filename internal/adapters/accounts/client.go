// Package accounts is the HTTP client for the external financial-services
// collaborator. Transport failures and 5xx responses are retried a bounded
// number of times with backoff and then surfaced as system faults; a 4xx is
// an expected business rejection and comes back as a component fault for
// the calling step to turn into a re-prompt.
package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/konvo/konvo/internal/logging"
	"github.com/konvo/konvo/pkg/domain"
	"github.com/konvo/konvo/pkg/faults"
)

const (
	maxAttempts = 3
	baseBackoff = 200 * time.Millisecond
)

// Client implements ports.AccountsAPI.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom
// timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger configures a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the accounts API at base.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the remote error envelope.
type apiError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Call performs a named operation. The response carries a full-replacement
// snapshot plus the action record describing the operation just performed.
func (c *Client) Call(ctx context.Context, op string, token string, payload map[string]any) (*domain.APIResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, faults.System("accounts", op, "serialization", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(baseBackoff << (attempt - 1)):
			}
			c.logger.Debug("retrying accounts call", "op", op, "attempt", attempt+1)
		}

		result, retry, err := c.do(ctx, op, token, body)
		if err == nil {
			return result, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, faults.System("accounts", op, "unavailable", lastErr)
}

// do performs one round-trip. retry reports whether the failure is
// transient.
func (c *Client) do(ctx context.Context, op, token string, body []byte) (*domain.APIResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/ops/"+op, bytes.NewReader(body))
	if err != nil {
		return nil, false, faults.System("accounts", op, "request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("accounts call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read accounts response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("accounts returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		var remote apiError
		_ = json.Unmarshal(data, &remote)
		if remote.Message == "" {
			remote.Message = fmt.Sprintf("operation rejected (%d)", resp.StatusCode)
		}
		return nil, false, &faults.ComponentError{
			Field:   remote.Field,
			Message: remote.Message,
			Details: map[string]any{"status": resp.StatusCode, "op": op},
		}
	}

	var result domain.APIResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, faults.System("accounts", op, "serialization", err)
	}
	return &result, false, nil
}
