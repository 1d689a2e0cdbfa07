package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the settings for the chat-completions client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Retries     int
	RetryDelay  time.Duration
	RateLimit   float64 // requests per second

	CacheDir     string
	CacheEnabled bool
}

func (c Config) normalize() Config {
	out := c
	if out.Model == "" {
		out.Model = "glm-4"
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 4000
	}
	if out.Timeout <= 0 {
		out.Timeout = 60 * time.Second
	}
	if out.Retries <= 0 {
		out.Retries = 3
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = 2 * time.Second
	}
	if out.RateLimit <= 0 {
		out.RateLimit = 0.5
	}
	return out
}

// Client calls an OpenAI-compatible chat-completions endpoint (GLM-4 style).
// Requests are paced by a rate limiter, retried with backoff behind a circuit
// breaker, and optionally served from a disk cache keyed by prompt.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *responseCache
	executor   *executor
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.normalize()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: base URL cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key cannot be empty")
	}

	var cache *responseCache
	if cfg.CacheEnabled {
		var err error
		cache, err = newResponseCache(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("llm: init response cache: %w", err)
		}
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cache:      cache,
		executor: newExecutor(executorConfig{
			maxAttempts:    cfg.Retries,
			initialBackoff: cfg.RetryDelay,
		}),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends one system+user exchange and returns the assistant
// message content.
func (c *Client) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cacheKey := promptKey(userPrompt)
	if c.cache != nil {
		if cached, ok := c.cache.get(cacheKey); ok {
			return cached, nil
		}
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	var content string
	err := c.executor.execute(ctx, "chat_completion", func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var response chatResponse
		if err := c.postJSON(ctx, "/chat/completions", reqBody, &response, "chat_completion"); err != nil {
			return err
		}
		if len(response.Choices) == 0 {
			return fmt.Errorf("chat completion returned no choices")
		}
		content = strings.TrimSpace(response.Choices[0].Message.Content)
		return nil
	}, classifyError)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		c.cache.put(cacheKey, content)
	}
	return content, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(payload)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
