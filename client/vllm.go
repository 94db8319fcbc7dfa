// Package client implements the request issuer for OpenAI-compatible
// inference servers such as vLLM.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds client connection settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string // resolved from /v1/models when empty
	Temperature float32
	Timeout     time.Duration
}

// Client talks to an OpenAI-compatible inference server.
type Client struct {
	api         *openai.Client
	http        *http.Client
	baseURL     string
	apiKey      string
	temperature float32

	mu    sync.Mutex
	model string // default model, resolved once and cached
}

// New creates a client for the server at cfg.BaseURL.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	apiKey := cfg.APIKey
	if apiKey == "" {
		// vLLM requires a bearer token even when auth is disabled.
		apiKey = "dummy-key"
	}

	httpClient := &http.Client{Timeout: timeout}
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = base + "/v1"
	oc.HTTPClient = httpClient

	return &Client{
		api:         openai.NewClientWithConfig(oc),
		http:        httpClient,
		baseURL:     base,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		model:       cfg.Model,
	}
}

// Generate sends one chat completion request and returns the generated
// text. It implements the bench.Generator contract.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("server returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// resolveModel returns the model to benchmark, fetching the server's model
// list once and caching the first entry. Safe for concurrent use.
func (c *Client) resolveModel(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != "" {
		return c.model, nil
	}
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}
	if len(list.Models) == 0 {
		return "", fmt.Errorf("no models available on the server")
	}
	c.model = list.Models[0].ID
	return c.model, nil
}

// Model returns the resolved model name, or "" if none was configured and
// no request has resolved one yet.
func (c *Client) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Models lists the model IDs available on the server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// HealthCheck probes the server's /health endpoint. vLLM 0.11+ returns
// 200 with an empty body.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Endpoint returns the server base URL.
func (c *Client) Endpoint() string {
	return c.baseURL
}
