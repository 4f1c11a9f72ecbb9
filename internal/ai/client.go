// Package ai talks to the upstream suggestion model endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/washdesk/api/internal/platform/config"
)

const (
	defaultTimeout   = 20 * time.Second
	maxResponseBytes = 1 << 20
)

// ErrBadResponse indicates the endpoint answered with a non-success status.
var ErrBadResponse = errors.New("ai: bad response")

// Client calls the suggestion endpoint with a JSON prompt envelope. It
// implements the provider interface consumed by the suggestion service.
type Client struct {
	endpoint string
	token    string
	model    string
	http     *http.Client
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// NewClient builds a suggestion client from configuration.
func NewClient(cfg config.AIConfig, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.SuggestionEndpoint)
	if endpoint == "" {
		return nil, errors.New("ai: suggestion endpoint is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		endpoint: endpoint,
		token:    strings.TrimSpace(cfg.AuthToken),
		model:    strings.TrimSpace(cfg.Model),
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type suggestionRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

type suggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggest sends the prompt and returns the raw suggestion strings.
func (c *Client) Suggest(ctx context.Context, prompt string) ([]string, error) {
	body, err := json.Marshal(suggestionRequest{Prompt: prompt, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("ai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai: call endpoint: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var decoded suggestionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("ai: decode response: %w", err)
	}
	return decoded.Suggestions, nil
}
