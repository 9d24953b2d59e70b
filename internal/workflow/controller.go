// Package workflow sequences the tailoring stages as an explicit state machine.
//
// A run moves ANALYZE -> CRITIQUE_INITIAL -> SUGGEST and then pauses in AWAITING_APPROVAL.
// Resume re-enters the machine with the held state and loops DRAFT -> CRITIQUE_LOOP until
// Decide routes to FINALIZE, after which the run is DONE.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/stages"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Runner is the set of stage operations the controller sequences.
type Runner interface {
	Analyze(ctx context.Context, state *types.RunState) types.Update
	Critique(ctx context.Context, state *types.RunState) types.Update
	Suggest(ctx context.Context, state *types.RunState) types.Update
	Draft(ctx context.Context, state *types.RunState) types.Update
	Finalize(ctx context.Context, state *types.RunState) types.Update
}

// DefaultMaxIterations bounds the draft loop when no cap is configured.
const DefaultMaxIterations = 3

// Controller drives one run at a time per call. It holds no per-run state,
// so a single controller can serve independent runs concurrently.
type Controller struct {
	runner        Runner
	maxIterations int
	logger        *zap.Logger
	onProgress    ProgressCallback
}

// NewController creates a controller. A non-positive cap falls back to DefaultMaxIterations.
func NewController(runner Runner, maxIterations int, log *zap.Logger) *Controller {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Controller{
		runner:        runner,
		maxIterations: maxIterations,
		logger:        logger.WithFields(log),
	}
}

// WithProgress returns a copy of the controller that reports to cb.
func (c *Controller) WithProgress(cb ProgressCallback) *Controller {
	out := *c
	out.onProgress = cb
	return &out
}

// MaxIterations returns the configured draft cap.
func (c *Controller) MaxIterations() int {
	return c.maxIterations
}

// Evaluate analyzes the job, scores the original resume and proposes suggestions.
// The returned state is AWAITING_APPROVAL; the input state is not modified.
func (c *Controller) Evaluate(ctx context.Context, state *types.RunState) (*types.RunState, error) {
	if err := validateInputs(state); err != nil {
		return nil, err
	}
	if state.Status != "" && state.Status != types.StatusAnalyze {
		return nil, &StateError{Message: "evaluation only starts a new run", Status: state.Status}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := state.Clone()
	log := logger.WithRun(c.logger, run.ID)
	log.Info("evaluation started")

	c.step(ctx, run, types.StatusAnalyze, stages.NameAnalyze, c.runner.Analyze)
	c.step(ctx, run, types.StatusCritiqueInitial, stages.NameCritique, c.runner.Critique)
	run.InitialCritique = run.Critique.Clone()
	c.step(ctx, run, types.StatusSuggest, stages.NameSuggest, c.runner.Suggest)

	run.Status = types.StatusAwaitingApproval
	c.emitProgress(run, stages.NameSuggest, PhasePaused, "Awaiting approval to generate", run.Suggestions)
	log.Info("evaluation paused for approval", zap.Int("suggestions", len(run.Suggestions)))
	return run, nil
}

// Resume continues a run paused in AWAITING_APPROVAL through drafting and finalization.
// The returned state is DONE; the input state is not modified.
func (c *Controller) Resume(ctx context.Context, state *types.RunState) (*types.RunState, error) {
	if err := validateInputs(state); err != nil {
		return nil, err
	}
	if state.Status != types.StatusAwaitingApproval {
		return nil, &StateError{Message: "only a run awaiting approval can be resumed", Status: state.Status}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := state.Clone()
	log := logger.WithRun(c.logger, run.ID)
	log.Info("generation started", zap.Int("max_iterations", c.maxIterations))

	for run.Iteration < c.maxIterations {
		c.step(ctx, run, types.StatusDraft, stages.NameDraft, c.runner.Draft)
		c.step(ctx, run, types.StatusCritiqueLoop, stages.NameCritique, c.runner.Critique)

		decision := Decide(run, c.maxIterations)
		c.emitProgress(run, stages.NameCritique, PhaseDecision, decisionMessage(run, decision), decision)
		log.Info("loop decision", zap.String("next", string(decision.Next)), zap.String("reason", decision.Reason), zap.Int("iteration", run.Iteration))
		if decision.Next == types.StatusFinalize {
			break
		}
	}

	c.step(ctx, run, types.StatusFinalize, stages.NameFinalize, c.runner.Finalize)

	run.Status = types.StatusDone
	run.SetMeta(types.MetaFinishedAt, time.Now().UTC().Format(time.RFC3339))
	c.emitProgress(run, stages.NameFinalize, PhaseDone, "Resume finalized", nil)
	log.Info("generation finished", zap.Int("iterations", run.Iteration), zap.Bool("degraded", run.Error != nil))
	return run, nil
}

// Run evaluates and then immediately resumes, approving the suggestions without a pause.
func (c *Controller) Run(ctx context.Context, state *types.RunState) (*types.RunState, error) {
	paused, err := c.Evaluate(ctx, state)
	if err != nil {
		return nil, err
	}
	return c.Resume(ctx, paused)
}

type stageFunc func(ctx context.Context, state *types.RunState) types.Update

// step enters a state, runs its stage and merges the update.
func (c *Controller) step(ctx context.Context, run *types.RunState, status types.Status, name string, fn stageFunc) {
	run.Status = status
	message := stageMessage(name, run)
	c.emitProgress(run, name, PhaseStarted, message, nil)

	update := fn(ctx, run)
	// The controller owns the state tag
	update.Status = ""
	run.Apply(update)

	if update.Error != nil {
		c.emitProgress(run, name, PhaseDegraded, update.Error.String(), update.Error)
		return
	}
	c.emitProgress(run, name, PhaseCompleted, message+" done", stageContent(name, run))
}

func stageMessage(name string, run *types.RunState) string {
	switch name {
	case stages.NameAnalyze:
		return "Analyzing job description"
	case stages.NameCritique:
		if run.Status == types.StatusCritiqueInitial {
			return "Scoring original resume"
		}
		return fmt.Sprintf("Scoring draft %d", run.Iteration)
	case stages.NameSuggest:
		return "Generating suggestions"
	case stages.NameDraft:
		return fmt.Sprintf("Writing draft %d", run.Iteration+1)
	case stages.NameFinalize:
		return "Finalizing resume"
	default:
		return strings.ToUpper(name[:1]) + name[1:]
	}
}

func stageContent(name string, run *types.RunState) any {
	switch name {
	case stages.NameAnalyze:
		return run.Requirements
	case stages.NameCritique:
		return run.Critique
	case stages.NameSuggest:
		return run.Suggestions
	default:
		return nil
	}
}

func decisionMessage(run *types.RunState, d Decision) string {
	score := 0.0
	if run.Critique != nil {
		score = run.Critique.OverallScore
	}
	if d.Next == types.StatusFinalize {
		return fmt.Sprintf("Finalizing after %d draft(s): %s (score %.1f)", run.Iteration, d.Reason, score)
	}
	return fmt.Sprintf("Revising again: %s (score %.1f)", d.Reason, score)
}

func validateInputs(state *types.RunState) error {
	if state == nil {
		return &InputError{Field: "state", Message: "is required"}
	}
	if strings.TrimSpace(state.OriginalResume) == "" {
		return &InputError{Field: "original_resume", Message: "must not be empty"}
	}
	if strings.TrimSpace(state.JobDescription) == "" {
		return &InputError{Field: "job_description", Message: "must not be empty"}
	}
	return nil
}
