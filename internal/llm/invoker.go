package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logger"
)

// InvokerConfig bounds the retry loop.
type InvokerConfig struct {
	// MaxRetries is the total number of attempts.
	MaxRetries int
	// BaseDelay is the wait after the first failed attempt; it doubles after each further failure.
	BaseDelay time.Duration
	// AttemptTimeout caps a single backend call.
	AttemptTimeout time.Duration
	// MaxTokens is the token ceiling passed to every call.
	MaxTokens int
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Invoker sends prompts to a backend with bounded retry and exponential backoff.
// It keeps no state between calls.
type Invoker struct {
	backend Backend
	cfg     InvokerConfig
	logger  *zap.Logger
	sleep   SleepFunc
}

// NewInvoker wraps a backend. Zero config values fall back to the package defaults.
func NewInvoker(backend Backend, cfg InvokerConfig, log *zap.Logger) *Invoker {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Invoker{
		backend: backend,
		cfg:     cfg,
		logger:  logger.WithCommonFields(log, backend.Name(), backend.Model()),
		sleep:   sleepContext,
	}
}

// WithSleep replaces the wait between attempts. Intended for tests.
func (i *Invoker) WithSleep(fn SleepFunc) *Invoker {
	i.sleep = fn
	return i
}

// Backoff returns the wait after the given zero-based failed attempt.
func (i *Invoker) Backoff(attempt int) time.Duration {
	return i.cfg.BaseDelay * time.Duration(1<<attempt)
}

// Invoke returns the generated text for messages. An empty reply counts as a failed attempt.
// After MaxRetries failures it returns an *InvocationError wrapping the last failure.
func (i *Invoker) Invoke(ctx context.Context, messages []Message, temperature float64) (string, error) {
	var lastErr error

	for attempt := 0; attempt < i.cfg.MaxRetries; attempt++ {
		text, err := i.attempt(ctx, messages, temperature)
		if err == nil {
			if attempt > 0 {
				i.logger.Info("llm call succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return text, nil
		}
		lastErr = err

		if attempt == i.cfg.MaxRetries-1 {
			break
		}

		delay := i.Backoff(attempt)
		i.logger.Warn("llm call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", i.cfg.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := i.sleep(ctx, delay); err != nil {
			return "", &InvocationError{Message: "cancelled while waiting to retry", Attempts: attempt + 1, Cause: err}
		}
	}

	return "", &InvocationError{Message: "retry budget exhausted", Attempts: i.cfg.MaxRetries, Cause: lastErr}
}

func (i *Invoker) attempt(ctx context.Context, messages []Message, temperature float64) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, i.cfg.AttemptTimeout)
	defer cancel()

	text, err := i.backend.Complete(attemptCtx, Request{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   i.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}

	i.logger.Debug("llm call completed", zap.String("output", logger.TruncateForLog(text, 200)))
	return text, nil
}

var errEmptyResponse = errors.New("backend returned an empty response")

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
