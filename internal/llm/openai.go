package llm

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// OpenAIClient implements Backend for OpenAI-compatible chat completions endpoints
type OpenAIClient struct {
	http   *resty.Client
	config *Config
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	config = config.withDefaults()
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, &ConfigError{Message: "API key is required"}
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetAuthToken(config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(config.Timeout)

	return &OpenAIClient{http: client, config: config}, nil
}

// Complete posts the messages to /chat/completions and returns the first choice's content
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatCompletionRequest{
			Model:       c.config.Model,
			Messages:    req.Messages,
			Temperature: req.Temperature,
			MaxTokens:   maxTokens,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", &BackendError{Backend: c.Name(), Message: "request failed", Cause: err}
	}

	body := resp.Body()
	if resp.IsError() {
		msg := gjson.GetBytes(body, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return "", &BackendError{Backend: c.Name(), StatusCode: resp.StatusCode(), Message: msg}
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", &BackendError{Backend: c.Name(), StatusCode: resp.StatusCode(), Message: "no choices in response"}
	}

	return content.String(), nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string { return string(ProviderOpenAI) }

// Model returns the configured model
func (c *OpenAIClient) Model() string { return c.config.Model }

// Close is a no-op; resty keeps no resources that need releasing
func (c *OpenAIClient) Close() error { return nil }
