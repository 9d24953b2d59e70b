package stages

import (
	"context"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Finalize polishes the current draft. It always sets the final resume; on failure the draft is used as-is.
func (s *Stages) Finalize(ctx context.Context, state *types.RunState) types.Update {
	current := state.CurrentResume()
	if strings.TrimSpace(current) == "" {
		return types.Update{
			FinalResume: types.StringPtr(current),
			Error:       s.stageError(NameFinalize, state, errNoResume),
		}
	}

	prompt := render(prompts.KeyFinalizeResume, map[string]string{"Resume": current})
	messages := []llm.Message{systemPrompt(prompts.KeySystemWriter), llm.User(prompt)}

	reply, err := s.llm.Invoke(ctx, messages, TemperatureFinalize)
	if err != nil {
		return types.Update{
			FinalResume: types.StringPtr(current),
			Error:       s.stageError(NameFinalize, state, err),
		}
	}

	final := llm.StripCodeFence(reply)
	if final == "" {
		final = current
	}
	s.completed(NameFinalize, state)
	return types.Update{FinalResume: types.StringPtr(final)}
}
