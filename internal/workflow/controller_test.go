package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/stages"
	"github.com/jonathan/resume-tailor/internal/types"
)

// fakeRunner scores every draft with a fixed sequence and counts stage calls.
type fakeRunner struct {
	scores    []float64
	threshold float64
	calls     map[string]int
	order     []string
}

func newFakeRunner(threshold float64, scores ...float64) *fakeRunner {
	return &fakeRunner{scores: scores, threshold: threshold, calls: map[string]int{}}
}

func (f *fakeRunner) record(name string) {
	f.calls[name]++
	f.order = append(f.order, name)
}

func (f *fakeRunner) Analyze(_ context.Context, _ *types.RunState) types.Update {
	f.record("analyze")
	return types.Update{Requirements: &types.JobRequirements{JobTitle: "Engineer"}, Iteration: types.IntPtr(0)}
}

func (f *fakeRunner) Critique(_ context.Context, _ *types.RunState) types.Update {
	f.record("critique")
	score := 0.0
	if n := f.calls["critique"] - 1; n < len(f.scores) {
		score = f.scores[n]
	} else if len(f.scores) > 0 {
		score = f.scores[len(f.scores)-1]
	}
	c := &types.Critique{OverallScore: score}
	c.Approve(f.threshold)
	return types.Update{Critique: c}
}

func (f *fakeRunner) Suggest(_ context.Context, _ *types.RunState) types.Update {
	f.record("suggest")
	return types.Update{
		Suggestions:    []types.Suggestion{{Category: "Keywords", Suggestion: "Add Go"}},
		SuggestionsSet: true,
		Status:         types.StatusAwaitingApproval,
	}
}

func (f *fakeRunner) Draft(_ context.Context, state *types.RunState) types.Update {
	f.record("draft")
	return types.Update{DraftResume: types.StringPtr("draft"), Iteration: types.IntPtr(state.Iteration + 1)}
}

func (f *fakeRunner) Finalize(_ context.Context, state *types.RunState) types.Update {
	f.record("finalize")
	return types.Update{FinalResume: types.StringPtr("final: " + state.CurrentResume())}
}

func TestDecide(t *testing.T) {
	approved := &types.Critique{OverallScore: 9, Approved: true}
	rejected := &types.Critique{OverallScore: 5}

	tests := []struct {
		name   string
		state  types.RunState
		max    int
		want   types.Status
		reason string
	}{
		{name: "error wins over everything", state: types.RunState{Error: &types.StageError{}, Critique: rejected, Iteration: 1}, max: 3, want: types.StatusFinalize, reason: ReasonStageError},
		{name: "approved", state: types.RunState{Critique: approved, Iteration: 1}, max: 3, want: types.StatusFinalize, reason: ReasonApproved},
		{name: "cap reached", state: types.RunState{Critique: rejected, Iteration: 3}, max: 3, want: types.StatusFinalize, reason: ReasonIterationCap},
		{name: "below bar loops", state: types.RunState{Critique: rejected, Iteration: 2}, max: 3, want: types.StatusDraft, reason: ReasonBelowBar},
		{name: "no critique loops", state: types.RunState{Iteration: 0}, max: 1, want: types.StatusDraft, reason: ReasonBelowBar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(&tt.state, tt.max)
			assert.Equal(t, tt.want, d.Next)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestRun_NeverApprovedStopsAtCap(t *testing.T) {
	for n := 1; n <= 5; n++ {
		runner := newFakeRunner(8.0, 5.0)
		ctrl := NewController(runner, n, zap.NewNop())

		final, err := ctrl.Run(context.Background(), types.NewRunState("run", "resume", "jd"))
		require.NoError(t, err)

		assert.Equal(t, n, runner.calls["draft"], "max_iterations=%d", n)
		assert.Equal(t, n, final.Iteration)
		assert.Equal(t, 1, runner.calls["finalize"])
		assert.Equal(t, types.StatusDone, final.Status)
	}
}

func TestRun_StopsWhenApproved(t *testing.T) {
	runner := newFakeRunner(8.0, 6.0, 7.0, 8.0, 9.0)
	ctrl := NewController(runner, 5, nil)

	final, err := ctrl.Run(context.Background(), types.NewRunState("run", "resume", "jd"))
	require.NoError(t, err)

	// Initial critique 6.0, drafts scored 7.0 then 8.0
	assert.Equal(t, 2, runner.calls["draft"])
	assert.True(t, final.Critique.Approved)
	assert.Equal(t, 6.0, final.InitialCritique.OverallScore)
	assert.Equal(t, "final: draft", final.FinalResume)
	assert.Equal(t, []string{
		"analyze", "critique", "suggest",
		"draft", "critique", "draft", "critique",
		"finalize",
	}, runner.order)
}

func TestEvaluate_PausesForApproval(t *testing.T) {
	runner := newFakeRunner(8.0, 9.0)
	ctrl := NewController(runner, 3, nil)
	input := types.NewRunState("run", "resume", "jd")

	paused, err := ctrl.Evaluate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, types.StatusAwaitingApproval, paused.Status)
	assert.Empty(t, paused.FinalResume)
	assert.Zero(t, runner.calls["draft"])
	require.NotNil(t, paused.InitialCritique)
	assert.NotSame(t, paused.Critique, paused.InitialCritique)

	// The caller's state is untouched
	assert.Equal(t, types.StatusAnalyze, input.Status)
	assert.Nil(t, input.Requirements)
}

func TestResume_RequiresAwaitingApproval(t *testing.T) {
	ctrl := NewController(newFakeRunner(8.0), 3, nil)

	for _, status := range []types.Status{types.StatusAnalyze, types.StatusDraft, types.StatusDone} {
		state := types.NewRunState("run", "resume", "jd")
		state.Status = status

		_, err := ctrl.Resume(context.Background(), state)
		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr, "status %s", status)
		assert.Equal(t, status, stateErr.Status)
	}
}

func TestEvaluate_RejectsStartedRun(t *testing.T) {
	ctrl := NewController(newFakeRunner(8.0), 3, nil)
	state := types.NewRunState("run", "resume", "jd")
	state.Status = types.StatusAwaitingApproval

	_, err := ctrl.Evaluate(context.Background(), state)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestEvaluate_RequiresInputs(t *testing.T) {
	ctrl := NewController(newFakeRunner(8.0), 3, nil)

	tests := []struct {
		name  string
		state *types.RunState
		field string
	}{
		{name: "nil state", state: nil, field: "state"},
		{name: "blank resume", state: types.NewRunState("run", "  ", "jd"), field: "original_resume"},
		{name: "blank job description", state: types.NewRunState("run", "resume", ""), field: "job_description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctrl.Evaluate(context.Background(), tt.state)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}
}

func TestEvaluate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewController(newFakeRunner(8.0), 3, nil).Evaluate(ctx, types.NewRunState("run", "resume", "jd"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResume_HeldStateCanBeResumedRepeatedly(t *testing.T) {
	ctrl := NewController(newFakeRunner(8.0, 9.0), 3, nil)
	paused, err := ctrl.Evaluate(context.Background(), types.NewRunState("run", "resume", "jd"))
	require.NoError(t, err)

	first, err := ctrl.Resume(context.Background(), paused)
	require.NoError(t, err)
	second, err := ctrl.Resume(context.Background(), paused)
	require.NoError(t, err)

	assert.Equal(t, types.StatusDone, first.Status)
	assert.Equal(t, types.StatusDone, second.Status)
	assert.Equal(t, types.StatusAwaitingApproval, paused.Status)
}

func TestProgressEvents(t *testing.T) {
	var mu sync.Mutex
	var events []ProgressEvent
	ctrl := NewController(newFakeRunner(8.0, 5.0, 9.0), 3, nil).WithProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	_, err := ctrl.Run(context.Background(), types.NewRunState("run-42", "resume", "jd"))
	require.NoError(t, err)

	var phases []string
	lastIteration := 0
	for _, e := range events {
		assert.Equal(t, "run-42", e.RunID)
		assert.GreaterOrEqual(t, e.Iteration, lastIteration, "iteration never decreases")
		lastIteration = e.Iteration
		phases = append(phases, e.Stage+":"+e.Phase)
	}
	assert.Equal(t, []string{
		"analyze:started", "analyze:completed",
		"critique:started", "critique:completed",
		"suggest:started", "suggest:completed", "suggest:paused",
		"draft:started", "draft:completed",
		"critique:started", "critique:completed", "critique:decision",
		"finalize:started", "finalize:completed", "finalize:done",
	}, phases)
	assert.Equal(t, types.StatusCritiqueInitial, events[2].Status)
	assert.Equal(t, types.StatusCritiqueLoop, events[9].Status)
}

// scriptedCompleter answers each prompt kind with canned model output.
type scriptedCompleter struct {
	mu       sync.Mutex
	critiques []string
	drafts    int
}

func (s *scriptedCompleter) Invoke(_ context.Context, messages []llm.Message, _ float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := messages[len(messages)-1].Content
	switch {
	case strings.Contains(prompt, "Analyze this job description"):
		return "Sure! Here is the analysis:\n```json\n{\"job_title\": \"Senior Backend Engineer\", \"company\": \"Unknown\", \"required_skills\": [\"Go\", \"Kubernetes\"], \"key_responsibilities\": [\"Build backend services\"], \"ats_keywords\": [\"Go\", \"Kubernetes\", \"backend\"]}\n```", nil
	case strings.Contains(prompt, "Score this resume"):
		reply := s.critiques[0]
		if len(s.critiques) > 1 {
			s.critiques = s.critiques[1:]
		}
		return reply, nil
	case strings.Contains(prompt, "improvement suggestions"):
		return `{"suggestions": [{"category": "Keywords", "suggestion": "Mention Go and Kubernetes"}, {"category": "Experience", "suggestion": "Quantify backend work"}]}`, nil
	case strings.Contains(prompt, "Rewrite this resume"):
		s.drafts++
		return "```markdown\n# Experienced backend engineer\n\n- Built Go services on Kubernetes\n```", nil
	case strings.Contains(prompt, "Polish and finalize"):
		return "# Experienced backend engineer\n\n- Built Go services on Kubernetes (final)", nil
	}
	return "", errors.New("unexpected prompt")
}

func TestRun_EndToEndScenario(t *testing.T) {
	completer := &scriptedCompleter{critiques: []string{
		`{"overall_score": 5.5, "keyword_score": 4, "experience_score": 6, "ats_score": 6, "formatting_score": 7, "accuracy_score": 9, "feedback": "Missing Kubernetes"}`,
		`The draft is better. {"overall_score": 7.4, "feedback": "Closer"}`,
		`{"overall_score": 8.6, "feedback": "Strong match"}`,
	}}
	st := stages.New(completer, stages.Settings{ApprovalThreshold: 8.0, TemperatureAnalysis: 0.3, TemperatureGeneration: 0.7}, nil)
	ctrl := NewController(st, 3, nil)

	final, err := ctrl.Run(context.Background(), types.NewRunState("run", "Experienced backend engineer...", "Seeking senior backend engineer with Go and Kubernetes experience"))
	require.NoError(t, err)

	require.NotNil(t, final.Requirements)
	assert.NotEmpty(t, final.Requirements.Keywords())
	assert.Contains(t, final.Requirements.Keywords(), "Go")
	assert.Contains(t, final.Requirements.Keywords(), "Kubernetes")

	assert.LessOrEqual(t, completer.drafts, 3)
	assert.Equal(t, 2, final.Iteration)
	assert.True(t, final.Critique.Approved)
	assert.False(t, final.InitialCritique.Approved)
	assert.Nil(t, final.Error)
	assert.Equal(t, types.StatusDone, final.Status)
	assert.Contains(t, final.FinalResume, "(final)")
	assert.Equal(t, "Experienced backend engineer...", final.OriginalResume)
	assert.NotEmpty(t, final.Metadata[types.MetaFinishedAt])
}

type failingCompleter struct{}

func (failingCompleter) Invoke(context.Context, []llm.Message, float64) (string, error) {
	return "", &llm.InvocationError{Message: "retry budget exhausted", Attempts: 3, Cause: errors.New("unreachable")}
}

func TestRun_AlwaysFailingBackendStillFinalizes(t *testing.T) {
	st := stages.New(failingCompleter{}, stages.Settings{ApprovalThreshold: 8.0}, nil)
	ctrl := NewController(st, 3, nil)

	final, err := ctrl.Run(context.Background(), types.NewRunState("run", "Original resume text", "jd"))
	require.NoError(t, err)

	assert.Equal(t, types.StatusDone, final.Status)
	assert.Equal(t, "Original resume text", final.FinalResume)
	assert.Equal(t, 1, final.Iteration)
	require.NotNil(t, final.Error)
	assert.Equal(t, types.ErrorKindInvocation, final.Error.Kind)
	assert.False(t, final.Critique.Approved)
	assert.Equal(t, types.UnknownValue, final.Requirements.JobTitle)
}
