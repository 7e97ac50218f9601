// Package gateway implements the chat-platform client used to deliver
// replies, delegate notifications, and swarm channel posts. All calls
// are single best-effort attempts; retry policy belongs to the caller
// (which, for routing, is "no retry").
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"relay-router/internal/common/errors"
)

// Gateway is the messaging surface the routing engine dispatches
// through.
type Gateway interface {
	// Reply sends a direct message back to a user.
	Reply(ctx context.Context, userID, text string) error

	// Notify sends a direct message to a delegate.
	Notify(ctx context.Context, delegateID, text string) error

	// CreateChannel creates a channel and returns its id.
	CreateChannel(ctx context.Context, name string) (string, error)

	// Post writes a message into a channel.
	Post(ctx context.Context, channelID, text string) error
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the chat platform's HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(config *Config) (*Client, error) {
	if config == nil || config.BaseURL == "" {
		return nil, errors.ConfigError("gateway base URL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid gateway base URL: %v", err))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: config.BaseURL,
		token:   config.Token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Reply(ctx context.Context, userID, text string) error {
	path := fmt.Sprintf("/users/%s/messages", url.PathEscape(userID))
	_, err := c.post(ctx, path, map[string]string{"text": text})
	if err != nil {
		return errors.GatewayError("reply", err).WithContext("user_id", userID)
	}
	return nil
}

func (c *Client) Notify(ctx context.Context, delegateID, text string) error {
	path := fmt.Sprintf("/users/%s/messages", url.PathEscape(delegateID))
	_, err := c.post(ctx, path, map[string]string{"text": text})
	if err != nil {
		return errors.GatewayError("notify", err).WithContext("delegate_id", delegateID)
	}
	return nil
}

func (c *Client) CreateChannel(ctx context.Context, name string) (string, error) {
	body, err := c.post(ctx, "/channels", map[string]string{"name": name})
	if err != nil {
		return "", errors.GatewayError("create_channel", err).WithContext("name", name)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.GatewayError("create_channel", fmt.Errorf("unexpected response: %w", err))
	}
	if resp.ID == "" {
		return "", errors.GatewayError("create_channel", fmt.Errorf("response missing channel id"))
	}
	return resp.ID, nil
}

func (c *Client) Post(ctx context.Context, channelID, text string) error {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	_, err := c.post(ctx, path, map[string]string{"text": text})
	if err != nil {
		return errors.GatewayError("post", err).WithContext("channel_id", channelID)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return body, nil
}
