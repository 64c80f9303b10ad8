package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client retrieves the schedule document over HTTP.
type Client struct {
	// URL is the full address of the schedule JSON document.
	URL string
	// HTTPClient overrides the default client (tests, custom timeouts).
	HTTPClient *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 15 * time.Second}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return defaultHTTPClient
}

// Fetch performs a single GET of the schedule document. A failed fetch aborts
// the current cycle; the next scheduled run retries naturally, so there is no
// retry loop here.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("fetch schedule: no url configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("failed to close schedule response body", slog.Any("err", cerr))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch schedule: unexpected status %s", resp.Status)
	}
	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("fetch schedule: decode document: %w", err)
	}
	return &doc, nil
}
