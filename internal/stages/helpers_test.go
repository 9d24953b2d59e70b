package stages

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
)

type call struct {
	messages    []llm.Message
	temperature float64
}

// fakeCompleter returns replies in order; a nil error with empty text is returned as-is.
type fakeCompleter struct {
	replies []string
	errs    []error
	calls   []call
}

func (f *fakeCompleter) Invoke(_ context.Context, messages []llm.Message, temperature float64) (string, error) {
	f.calls = append(f.calls, call{messages: messages, temperature: temperature})
	i := len(f.calls) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func (f *fakeCompleter) lastPrompt() string {
	if len(f.calls) == 0 {
		return ""
	}
	msgs := f.calls[len(f.calls)-1].messages
	return msgs[len(msgs)-1].Content
}

func (f *fakeCompleter) lastSystem() string {
	if len(f.calls) == 0 {
		return ""
	}
	var parts []string
	for _, m := range f.calls[len(f.calls)-1].messages {
		if m.Role == llm.RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

var failing = &llm.InvocationError{Message: "retry budget exhausted", Attempts: 3, Cause: errors.New("connection refused")}

func newStages(f *fakeCompleter) *Stages {
	return New(f, Settings{ApprovalThreshold: 8.0, TemperatureAnalysis: 0.3, TemperatureGeneration: 0.7}, zap.NewNop())
}
