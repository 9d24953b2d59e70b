package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Critique scores the current draft, or the original resume before any draft exists.
func (s *Stages) Critique(ctx context.Context, state *types.RunState) types.Update {
	prompt := render(prompts.KeyCritiqueResume, map[string]string{
		"Resume":         state.CurrentResume(),
		"Requirements":   requirementsJSON(state.Requirements),
		"OriginalResume": state.OriginalResume,
	})
	messages := []llm.Message{systemPrompt(prompts.KeySystemRecruiter), llm.User(prompt)}

	reply, err := s.llm.Invoke(ctx, messages, TemperatureCritique)
	if err == nil {
		var rec *parsing.Record
		rec, err = parsing.Parse(reply)
		if err == nil {
			critique := critiqueFrom(rec, s.settings.ApprovalThreshold)
			s.completed(NameCritique, state,
				zap.Float64("overall_score", critique.OverallScore),
				zap.Bool("approved", critique.Approved),
			)
			return types.Update{Critique: critique}
		}
	}

	return types.Update{
		Critique: types.FallbackCritique("Critique failed: " + err.Error()),
		Error:    s.stageError(NameCritique, state, err),
	}
}
