// Package analytics provides the HTTP client for the bearer-protected
// analytics API (hero score series and tournament score series).
//
// Expired bearer tokens surface as ErrUnauthorized so the credential
// manager can route them into a refresh; every other failure propagates
// as a plain fetch error.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrUnauthorized reports a 401/403 from a bearer-protected endpoint,
// i.e. an expired or invalid credential.
var ErrUnauthorized = errors.New("analytics: unauthorized")

const (
	scoresPath     = "/api/analytics/heroes-scores"
	tournamentPath = "/api/analytics/tournament-scores"
)

// Client is the HTTP client for analytics endpoints. The bearer token is
// not held here — it is owned by the credential manager and passed per
// call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an analytics HTTP client with rate limiting.
func NewClient(baseURL string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Probe issues a cheap authenticated request to validate the token.
// Returns ErrUnauthorized on 401/403, nil on success, and the underlying
// error otherwise — non-auth failures must not be mistaken for expiry.
func (c *Client) Probe(ctx context.Context, token string) error {
	_, err := c.get(ctx, scoresPath, token)
	return err
}

// get performs a rate-limited bearer-authenticated GET request.
func (c *Client) get(ctx context.Context, path, token string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("cache-control", "no-cache")
	req.Header.Set("pragma", "no-cache")
	req.Header.Set("expires", "0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("analytics %s returned %d: %w", path, resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("analytics %s returned %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// getJSON performs a GET request and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	body, err := c.get(ctx, path, token)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
