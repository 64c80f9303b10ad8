package discordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const defaultBaseURL = "https://discord.com/api/v10"

// userAgent follows the format Discord requires of bot user agents.
const userAgent = "DiscordBot (https://github.com/SebPartof2/stw222-bot, 1.0)"

// Client provides the message operations needed to read and rebuild a
// schedule channel.
type Client struct {
	// Token is the bot token, sent as "Authorization: Bot <token>".
	Token string
	// HTTPClient overrides the default client (tests, custom timeouts).
	HTTPClient *http.Client
	// BaseURL overrides the production API root (tests).
	BaseURL string
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

// APIError is a non-2xx response from the Discord API.
type APIError struct {
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord api: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404, which on
// delete paths means the message is already gone.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err is an APIError with status 429.
func IsRateLimited(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusTooManyRequests
}

// do issues one API request. No retries: callers run inside reconciliation
// cycles that self-heal on the next scheduled pass.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.Token == "" {
		return fmt.Errorf("discord api: token empty")
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("discord api: marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base()+path, rd)
	if err != nil {
		return fmt.Errorf("discord api: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.Token)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http().Do(req)
	if err != nil {
		return fmt.Errorf("discord api: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("failed to close response body", slog.Any("err", cerr))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("discord api: decode response: %w", err)
		}
	}
	return nil
}

// ChannelMessages returns up to limit messages from the channel, newest
// first (the API's native order). limit is clamped to the API bounds.
func (c *Client) ChannelMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channelID empty")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	path := fmt.Sprintf("/channels/%s/messages?limit=%s", url.PathEscape(channelID), strconv.Itoa(limit))
	var msgs []Message
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// CreateMessage posts a new message to the channel.
func (c *Client) CreateMessage(ctx context.Context, channelID string, m OutgoingMessage) (*Message, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channelID empty")
	}
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	var created Message
	if err := c.do(ctx, http.MethodPost, path, m, &created); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &created, nil
}

// BulkDeleteMessages removes the given messages in one call. The API accepts
// 2 to 100 IDs and rejects messages older than two weeks.
func (c *Client) BulkDeleteMessages(ctx context.Context, channelID string, ids []string) error {
	if channelID == "" {
		return fmt.Errorf("channelID empty")
	}
	if len(ids) < 2 || len(ids) > 100 {
		return fmt.Errorf("bulk delete: %d ids outside the allowed 2..100", len(ids))
	}
	path := fmt.Sprintf("/channels/%s/messages/bulk-delete", url.PathEscape(channelID))
	payload := struct {
		Messages []string `json:"messages"`
	}{Messages: ids}
	if err := c.do(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("bulk delete: %w", err)
	}
	return nil
}

// DeleteMessage removes a single message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if channelID == "" || messageID == "" {
		return fmt.Errorf("channelID or messageID empty")
	}
	path := fmt.Sprintf("/channels/%s/messages/%s", url.PathEscape(channelID), url.PathEscape(messageID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// ChannelClient binds a Client to one channel so callers hold a single value
// for all message operations against it.
type ChannelClient struct {
	Client    *Client
	ChannelID string
}

func (cc *ChannelClient) Messages(ctx context.Context, limit int) ([]Message, error) {
	return cc.Client.ChannelMessages(ctx, cc.ChannelID, limit)
}

func (cc *ChannelClient) Send(ctx context.Context, m OutgoingMessage) (*Message, error) {
	return cc.Client.CreateMessage(ctx, cc.ChannelID, m)
}

func (cc *ChannelClient) BulkDelete(ctx context.Context, ids []string) error {
	return cc.Client.BulkDeleteMessages(ctx, cc.ChannelID, ids)
}

func (cc *ChannelClient) Delete(ctx context.Context, messageID string) error {
	return cc.Client.DeleteMessage(ctx, cc.ChannelID, messageID)
}
