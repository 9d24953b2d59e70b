package stages

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Suggest proposes improvements and always leaves the run awaiting approval.
// It never touches the draft.
func (s *Stages) Suggest(ctx context.Context, state *types.RunState) types.Update {
	update := types.Update{SuggestionsSet: true, Status: types.StatusAwaitingApproval}

	scores := "{}"
	if state.Critique != nil {
		scores = indentJSON(state.Critique)
	}
	prompt := render(prompts.KeySuggest, map[string]string{
		"OriginalResume": state.OriginalResume,
		"Requirements":   requirementsJSON(state.Requirements),
		"CritiqueScores": scores,
	})

	reply, err := s.llm.Invoke(ctx, []llm.Message{llm.User(prompt)}, TemperatureSuggest)
	if err != nil {
		update.Suggestions = []types.Suggestion{}
		update.Error = s.stageError(NameSuggest, state, err)
		return update
	}

	rec, err := parsing.Parse(reply)
	if err != nil {
		// Echo the raw reply so the reader still sees what the model proposed
		update.Suggestions = []types.Suggestion{{Category: CategoryGeneral, Suggestion: strings.TrimSpace(reply)}}
		update.Error = s.stageError(NameSuggest, state, err)
		return update
	}

	update.Suggestions = suggestionsFrom(rec)
	s.completed(NameSuggest, state, zap.Int("suggestions", len(update.Suggestions)))
	return update
}
