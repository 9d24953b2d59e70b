package workflow

import "github.com/jonathan/resume-tailor/internal/types"

// Progress phases reported for each stage.
const (
	PhaseStarted   = "started"
	PhaseCompleted = "completed"
	PhaseDegraded  = "degraded"
	PhasePaused    = "paused"
	PhaseDecision  = "decision"
	PhaseDone      = "done"
)

// ProgressEvent represents a progress update during a run. It is informational only.
type ProgressEvent struct {
	Stage     string       `json:"stage"`
	Phase     string       `json:"phase"`
	Status    types.Status `json:"status"`
	Message   string       `json:"message"`
	RunID     string       `json:"run_id,omitempty"`
	Iteration int          `json:"iteration"`
	Content   any          `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func (c *Controller) emitProgress(state *types.RunState, stage, phase, message string, content any) {
	if c.onProgress == nil {
		return
	}
	c.onProgress(ProgressEvent{
		Stage:     stage,
		Phase:     phase,
		Status:    state.Status,
		Message:   message,
		RunID:     state.ID,
		Iteration: state.Iteration,
		Content:   content,
	})
}
