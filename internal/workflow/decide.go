package workflow

import "github.com/jonathan/resume-tailor/internal/types"

// Decision is the outcome of the continue/stop rule evaluated after every loop critique.
type Decision struct {
	Next   types.Status
	Reason string
}

// Decision reasons.
const (
	ReasonStageError   = "stage error"
	ReasonApproved     = "approved"
	ReasonIterationCap = "iteration cap reached"
	ReasonBelowBar     = "below approval threshold"
)

// Decide routes a critiqued run either back to drafting or on to finalization.
// Rules are checked in order: a stage error, approval, then the iteration cap.
func Decide(state *types.RunState, maxIterations int) Decision {
	switch {
	case state.Error != nil:
		return Decision{Next: types.StatusFinalize, Reason: ReasonStageError}
	case state.Critique != nil && state.Critique.Approved:
		return Decision{Next: types.StatusFinalize, Reason: ReasonApproved}
	case state.Iteration >= maxIterations:
		return Decision{Next: types.StatusFinalize, Reason: ReasonIterationCap}
	default:
		return Decision{Next: types.StatusDraft, Reason: ReasonBelowBar}
	}
}
