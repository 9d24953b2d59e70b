package stages

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Draft rewrites the resume and advances the iteration counter by exactly one, also on failure.
// A failed draft falls back to the original resume unchanged.
func (s *Stages) Draft(ctx context.Context, state *types.RunState) types.Update {
	next := state.Iteration + 1
	update := types.Update{Iteration: types.IntPtr(next)}

	feedback := "None"
	if state.Critique != nil && state.Critique.Feedback != "" {
		feedback = state.Critique.Feedback
	}
	prompt := render(prompts.KeyDraftResume, map[string]string{
		"OriginalResume": state.OriginalResume,
		"Requirements":   requirementsJSON(state.Requirements),
		"Suggestions":    FlattenSuggestions(state.Suggestions),
		"Iteration":      strconv.Itoa(next),
		"Feedback":       feedback,
	})
	messages := []llm.Message{systemPrompt(prompts.KeySystemWriter), llm.User(prompt)}

	reply, err := s.llm.Invoke(ctx, messages, s.settings.TemperatureGeneration)
	if err == nil {
		draft := llm.StripCodeFence(reply)
		if draft != "" {
			update.DraftResume = types.StringPtr(draft)
			s.completed(NameDraft, state, zap.Int("draft_length", len(draft)))
			return update
		}
		err = &parsing.MalformedResponseError{Message: "draft was empty after removing code fences"}
	}

	update.DraftResume = types.StringPtr(state.OriginalResume)
	update.Error = s.stageError(NameDraft, state, err)
	return update
}

// errNoResume is reported when finalization has nothing to polish.
var errNoResume = errors.New("no resume text to finalize")
