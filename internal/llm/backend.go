package llm

import (
	"context"
	"fmt"
)

// Message roles accepted by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Request is a single generation call.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Backend is an abstraction over LLM providers
type Backend interface {
	// Complete sends the messages and returns the generated text
	Complete(ctx context.Context, req Request) (string, error)
	// Name returns the provider name
	Name() string
	// Model returns the model identifier used for every call
	Model() string
	// Close releases any resources held by the backend
	Close() error
}

// NewBackend creates a backend based on configuration
func NewBackend(ctx context.Context, config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.withDefaults()

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("unsupported provider %q", config.Provider)}
	}
}
