// Package storefetch provides shared HTTP plumbing for store API fetchers.
package storefetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single fetch call against a store API.
const DefaultTimeout = 10 * time.Second

// Error is a fetch failure for one store. Callers isolate it to that
// store's unit of work instead of failing the whole job run.
type Error struct {
	StoreSlug string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch failed for store %q: %v", e.StoreSlug, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a fetch failure attributed to the given store.
func NewError(storeSlug string, err error) *Error {
	return &Error{StoreSlug: storeSlug, Err: err}
}

// Client is a thin JSON-over-HTTP client with a per-call timeout.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given per-call timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetJSON performs a GET against url and decodes the JSON response body
// into dest. A non-2xx status is an error.
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
