// Package llm provides text-generation backends and a retrying invoker around them.
// One backend is selected per process from configuration.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is any OpenAI-compatible chat completions endpoint (Qubrid, OpenRouter, OpenAI)
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Defaults for the OpenAI-compatible provider.
const (
	DefaultBaseURL     = "https://platform.qubrid.com/v1"
	DefaultModel       = "mistralai/Mistral-7B-Instruct-v0.3"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultTimeout     = 60 * time.Second
	DefaultMaxTokens   = 4096
	DefaultMaxRetries  = 3
	DefaultBaseDelay   = time.Second
)

// Config holds the backend configuration for the application
type Config struct {
	Provider  Provider
	Model     string
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	MaxTokens int
}

// DefaultConfig returns the default configuration (OpenAI-compatible endpoint)
func DefaultConfig() *Config {
	return &Config{
		Provider:  ProviderOpenAI,
		Model:     DefaultModel,
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		MaxTokens: DefaultMaxTokens,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Model:     DefaultGeminiModel,
		Timeout:   DefaultTimeout,
		MaxTokens: DefaultMaxTokens,
	}
}

// withDefaults fills zero values from the provider defaults.
func (c *Config) withDefaults() *Config {
	out := *c
	if out.Provider == "" {
		out.Provider = ProviderOpenAI
	}
	if out.Model == "" {
		if out.Provider == ProviderGemini {
			out.Model = DefaultGeminiModel
		} else {
			out.Model = DefaultModel
		}
	}
	if out.BaseURL == "" && out.Provider == ProviderOpenAI {
		out.BaseURL = DefaultBaseURL
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	return &out
}
