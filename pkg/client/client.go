// Package client talks to the blackjack HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blackjack-service/internal/service/game"
	appErr "blackjack-service/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// APIError carries the message the server put in its response envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blackjack api: %d %s", e.Status, e.Message)
}

type Stats struct {
	ActiveGames int    `json:"activeGames"`
	Timestamp   string `json:"timestamp"`
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) NewGame(ctx context.Context) (game.Snapshot, error) {
	var snap game.Snapshot
	err := c.call(ctx, http.MethodPost, "/api/game/new", nil, &snap, "Failed to create new game")
	return snap, err
}

func (c *Client) Hit(ctx context.Context, gameID string) (game.Snapshot, error) {
	return c.action(ctx, "/api/game/hit", gameID, "Failed to hit")
}

func (c *Client) Stand(ctx context.Context, gameID string) (game.Snapshot, error) {
	return c.action(ctx, "/api/game/stand", gameID, "Failed to stand")
}

func (c *Client) Status(ctx context.Context, gameID string) (game.Snapshot, error) {
	var snap game.Snapshot
	if gameID == "" {
		return snap, appErr.ErrGameIDRequired
	}
	err := c.call(ctx, http.MethodGet, "/api/game/status/"+url.PathEscape(gameID), nil, &snap, "Failed to get game status")
	return snap, err
}

func (c *Client) Delete(ctx context.Context, gameID string) error {
	if gameID == "" {
		return appErr.ErrGameIDRequired
	}
	return c.call(ctx, http.MethodDelete, "/api/game/"+url.PathEscape(gameID), nil, nil, "Failed to delete game")
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.call(ctx, http.MethodGet, "/api/game/stats", nil, &stats, "Failed to get server stats")
	return stats, err
}

// Health hits /health, which answers with a bare object rather than the envelope.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return h, fmt.Errorf("server is not responding: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return h, &APIError{Status: resp.StatusCode, Message: "Server is not responding"}
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return h, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}

func (c *Client) action(ctx context.Context, path, gameID, fallback string) (game.Snapshot, error) {
	var snap game.Snapshot
	if gameID == "" {
		return snap, appErr.ErrGameIDRequired
	}
	err := c.call(ctx, http.MethodPost, path, map[string]string{"gameId": gameID}, &snap, fallback)
	return snap, err
}

// call sends one request and decodes the envelope's data into out. Non-2xx
// responses become *APIError with the server's message, or fallback if it sent none.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = fallback
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: decode response: %w", fallback, decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", fallback, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
