package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		err        error
		wantTitle  string
		wantSkills []string
		wantKind   types.ErrorKind
	}{
		{
			name:       "fenced reply",
			reply:      "Here you go:\n```json\n{\"job_title\": \"Senior Backend Engineer\", \"company\": \"Acme\", \"required_skills\": [\"Go\", \"Kubernetes\"], \"ats_keywords\": [\"go\", \"microservices\"]}\n```",
			wantTitle:  "Senior Backend Engineer",
			wantSkills: []string{"Go", "Kubernetes"},
		},
		{
			name:       "missing fields default",
			reply:      `{"required_skills": "Go"}`,
			wantTitle:  types.UnknownValue,
			wantSkills: []string{"Go"},
		},
		{
			name:       "prose reply falls back",
			reply:      "I could not analyze this posting.",
			wantTitle:  types.UnknownValue,
			wantSkills: []string{},
			wantKind:   types.ErrorKindMalformedResponse,
		},
		{
			name:       "invocation failure falls back",
			err:        failing,
			wantTitle:  types.UnknownValue,
			wantSkills: []string{},
			wantKind:   types.ErrorKindInvocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCompleter{replies: []string{tt.reply}, errs: []error{tt.err}}
			state := types.NewRunState("run", "resume", "Seeking senior backend engineer")
			state.Iteration = 2

			update := newStages(f).Analyze(context.Background(), state)

			require.NotNil(t, update.Requirements)
			assert.Equal(t, tt.wantTitle, update.Requirements.JobTitle)
			assert.Equal(t, tt.wantSkills, update.Requirements.RequiredSkills)
			require.NotNil(t, update.Iteration)
			assert.Equal(t, 0, *update.Iteration)
			if tt.wantKind == "" {
				assert.Nil(t, update.Error)
			} else {
				require.NotNil(t, update.Error)
				assert.Equal(t, tt.wantKind, update.Error.Kind)
				assert.Equal(t, NameAnalyze, update.Error.Stage)
			}
			assert.Contains(t, f.lastPrompt(), "Seeking senior backend engineer")
			assert.Equal(t, 0.3, f.calls[0].temperature)
		})
	}
}

func TestCritique(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		err          error
		wantOverall  float64
		wantApproved bool
		wantError    bool
	}{
		{
			name:         "above threshold",
			reply:        `{"overall_score": 8.5, "keyword_score": 9, "experience_score": 8, "ats_score": 9, "formatting_score": 8, "accuracy_score": 9, "feedback": "good", "approved": false}`,
			wantOverall:  8.5,
			wantApproved: true,
		},
		{
			name:         "exactly at threshold",
			reply:        `{"overall_score": 8}`,
			wantOverall:  8,
			wantApproved: true,
		},
		{
			name:         "below threshold ignores model approval",
			reply:        `{"overall_score": 7.9, "approved": true}`,
			wantOverall:  7.9,
			wantApproved: false,
		},
		{
			name:         "missing overall uses subscore mean",
			reply:        `{"keyword_score": 6, "experience_score": 8}`,
			wantOverall:  7,
			wantApproved: false,
		},
		{
			name:         "scores clamped",
			reply:        `{"overall_score": 14, "keyword_score": -3}`,
			wantOverall:  10,
			wantApproved: true,
		},
		{
			name:         "numeric strings accepted",
			reply:        `{"overall_score": "9.1"}`,
			wantOverall:  9.1,
			wantApproved: true,
		},
		{
			name:      "failure falls back to zero",
			err:       failing,
			wantError: true,
		},
		{
			name:      "malformed falls back to zero",
			reply:     "Overall I would give it an eight.",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCompleter{replies: []string{tt.reply}, errs: []error{tt.err}}
			state := types.NewRunState("run", "original", "jd")

			update := newStages(f).Critique(context.Background(), state)

			require.NotNil(t, update.Critique)
			assert.InDelta(t, tt.wantOverall, update.Critique.OverallScore, 1e-9)
			assert.Equal(t, tt.wantApproved, update.Critique.Approved)
			if tt.wantError {
				require.NotNil(t, update.Error)
				assert.Equal(t, NameCritique, update.Error.Stage)
				assert.Contains(t, update.Critique.Feedback, "Critique failed:")
				assert.Equal(t, []float64{0, 0, 0, 0, 0}, update.Critique.Subscores())
			} else {
				assert.Nil(t, update.Error)
			}
			assert.Equal(t, TemperatureCritique, f.calls[0].temperature)
		})
	}
}

func TestCritique_ApprovalMatchesThreshold(t *testing.T) {
	for _, threshold := range []float64{0, 5, 8, 8.5, 10} {
		for _, score := range []string{"0", "4.99", "5", "7.99", "8", "8.49", "8.5", "9.5", "10"} {
			f := &fakeCompleter{replies: []string{`{"overall_score": ` + score + `}`}}
			s := New(f, Settings{ApprovalThreshold: threshold}, nil)

			c := s.Critique(context.Background(), types.NewRunState("run", "r", "jd")).Critique
			assert.Equal(t, c.OverallScore >= threshold, c.Approved, "threshold %v score %s", threshold, score)
		}
	}
}

func TestCritique_UsesCurrentDraft(t *testing.T) {
	f := &fakeCompleter{replies: []string{`{"overall_score": 5}`, `{"overall_score": 5}`}}
	s := newStages(f)
	state := types.NewRunState("run", "ORIGINAL TEXT", "jd")

	s.Critique(context.Background(), state)
	assert.Contains(t, f.lastPrompt(), "Resume:\nORIGINAL TEXT")

	state.DraftResume = "DRAFT TEXT"
	s.Critique(context.Background(), state)
	assert.Contains(t, f.lastPrompt(), "Resume:\nDRAFT TEXT")
	assert.Contains(t, f.lastSystem(), "recruiter")
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		err       error
		want      []types.Suggestion
		wantError bool
	}{
		{
			name:  "ordered suggestions",
			reply: `{"suggestions": [{"category": "Keywords", "suggestion": "Add Kubernetes"}, {"category": "", "suggestion": "Quantify impact"}, "Tighten summary", {"category": "X", "suggestion": ""}]}`,
			want: []types.Suggestion{
				{Category: "Keywords", Suggestion: "Add Kubernetes"},
				{Category: CategoryGeneral, Suggestion: "Quantify impact"},
				{Category: CategoryGeneral, Suggestion: "Tighten summary"},
			},
		},
		{
			name:      "unparseable reply echoed",
			reply:     "  Add more metrics to every bullet.  ",
			want:      []types.Suggestion{{Category: CategoryGeneral, Suggestion: "Add more metrics to every bullet."}},
			wantError: true,
		},
		{
			name:      "invocation failure gives empty list",
			err:       failing,
			want:      []types.Suggestion{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCompleter{replies: []string{tt.reply}, errs: []error{tt.err}}
			state := types.NewRunState("run", "original", "jd")
			state.DraftResume = "draft"

			update := newStages(f).Suggest(context.Background(), state)

			assert.True(t, update.SuggestionsSet)
			assert.Equal(t, tt.want, update.Suggestions)
			assert.Equal(t, types.StatusAwaitingApproval, update.Status)
			assert.Nil(t, update.DraftResume)
			assert.Equal(t, tt.wantError, update.Error != nil)
		})
	}
}

func TestDraft(t *testing.T) {
	t.Run("success increments iteration and keeps original", func(t *testing.T) {
		f := &fakeCompleter{replies: []string{"```markdown\n# Rewritten\n```"}}
		state := types.NewRunState("run", "A", "jd")
		state.Requirements = &types.JobRequirements{}

		update := newStages(f).Draft(context.Background(), state)
		state.Apply(update)

		assert.Equal(t, 1, state.Iteration)
		assert.Equal(t, "A", state.OriginalResume)
		assert.Equal(t, "# Rewritten", state.DraftResume)
		assert.Nil(t, state.Error)
		assert.Equal(t, 0.7, f.calls[0].temperature)
		assert.Equal(t, "You are an expert resume writer.", f.lastSystem())
	})

	t.Run("failure falls back to original and still increments", func(t *testing.T) {
		f := &fakeCompleter{errs: []error{failing}}
		state := types.NewRunState("run", "A", "jd")
		state.Iteration = 2
		state.DraftResume = "older draft"

		update := newStages(f).Draft(context.Background(), state)

		require.NotNil(t, update.Iteration)
		assert.Equal(t, 3, *update.Iteration)
		require.NotNil(t, update.DraftResume)
		assert.Equal(t, "A", *update.DraftResume)
		require.NotNil(t, update.Error)
		assert.Equal(t, types.ErrorKindInvocation, update.Error.Kind)
	})

	t.Run("empty fence is malformed", func(t *testing.T) {
		f := &fakeCompleter{replies: []string{"```\n```"}}
		update := newStages(f).Draft(context.Background(), types.NewRunState("run", "A", "jd"))

		require.NotNil(t, update.Error)
		assert.Equal(t, types.ErrorKindMalformedResponse, update.Error.Kind)
		assert.Equal(t, "A", *update.DraftResume)
	})

	t.Run("prompt carries flattened suggestions", func(t *testing.T) {
		f := &fakeCompleter{replies: []string{"draft"}}
		state := types.NewRunState("run", "A", "jd")
		state.Suggestions = []types.Suggestion{{Category: "Keywords", Suggestion: "Add Go"}}

		newStages(f).Draft(context.Background(), state)
		assert.Contains(t, f.lastPrompt(), "- Keywords: Add Go")
		assert.Contains(t, f.lastPrompt(), "revision 1")
	})
}

func TestFinalize(t *testing.T) {
	t.Run("polishes current draft", func(t *testing.T) {
		f := &fakeCompleter{replies: []string{"# Final"}}
		state := types.NewRunState("run", "original", "jd")
		state.DraftResume = "draft"

		update := newStages(f).Finalize(context.Background(), state)

		require.NotNil(t, update.FinalResume)
		assert.Equal(t, "# Final", *update.FinalResume)
		assert.Contains(t, f.lastPrompt(), "draft")
		assert.Equal(t, TemperatureFinalize, f.calls[0].temperature)
	})

	t.Run("failure uses draft", func(t *testing.T) {
		f := &fakeCompleter{errs: []error{failing}}
		state := types.NewRunState("run", "original", "jd")
		state.DraftResume = "draft"

		update := newStages(f).Finalize(context.Background(), state)

		require.NotNil(t, update.FinalResume)
		assert.Equal(t, "draft", *update.FinalResume)
		require.NotNil(t, update.Error)
		assert.Equal(t, NameFinalize, update.Error.Stage)
	})

	t.Run("no draft uses original", func(t *testing.T) {
		f := &fakeCompleter{errs: []error{failing}}
		update := newStages(f).Finalize(context.Background(), types.NewRunState("run", "original", "jd"))
		assert.Equal(t, "original", *update.FinalResume)
	})
}

func TestFlattenSuggestions(t *testing.T) {
	assert.Equal(t, "None", FlattenSuggestions(nil))
	assert.Equal(t, "- Keywords: Add Go\n- Format: Use bullets", FlattenSuggestions([]types.Suggestion{
		{Category: "Keywords", Suggestion: "Add Go"},
		{Category: "Format", Suggestion: "Use bullets"},
	}))
}
