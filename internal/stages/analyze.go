package stages

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Analyze extracts the job requirements record and resets the iteration counter.
func (s *Stages) Analyze(ctx context.Context, state *types.RunState) types.Update {
	update := types.Update{Iteration: types.IntPtr(0)}

	prompt := render(prompts.KeyAnalyzeJob, map[string]string{"JobDescription": state.JobDescription})
	reply, err := s.llm.Invoke(ctx, []llm.Message{llm.User(prompt)}, s.settings.TemperatureAnalysis)
	if err != nil {
		update.Requirements = types.FallbackRequirements()
		update.Error = s.stageError(NameAnalyze, state, err)
		return update
	}

	rec, err := parsing.Parse(reply)
	if err != nil {
		update.Requirements = types.FallbackRequirements()
		update.Error = s.stageError(NameAnalyze, state, err)
		return update
	}

	update.Requirements = requirementsFrom(rec)
	s.completed(NameAnalyze, state,
		zap.String("job_title", update.Requirements.JobTitle),
		zap.Int("keywords", len(update.Requirements.Keywords())),
	)
	return update
}
