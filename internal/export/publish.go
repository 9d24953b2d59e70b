package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/recorder"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Publish writes a finished run's files and records it in store.
// A run that is not DONE is rejected; nothing is written for it.
// When the record cannot be stored the written files are removed again.
func (e *Exporter) Publish(ctx context.Context, state *types.RunState, store recorder.Store) (*recorder.GenerationRecord, error) {
	if state == nil || state.Status != types.StatusDone {
		status := types.Status("")
		if state != nil {
			status = state.Status
		}
		return nil, fmt.Errorf("cannot publish run in state %q", status)
	}

	paths, err := e.Export(ctx, state.ID, state.FinalResume)
	if err != nil {
		return nil, err
	}

	rec, err := recorder.NewRecord(state, paths)
	if err != nil {
		e.Discard(paths)
		return nil, err
	}
	if _, err := store.Insert(ctx, rec); err != nil {
		e.Discard(paths)
		return nil, fmt.Errorf("failed to record generation: %w", err)
	}

	e.logger.Info("generation recorded",
		zap.Int64("generation_id", rec.ID),
		zap.String("run_id", state.ID),
		zap.Float64("final_score", rec.FinalScore),
	)
	return rec, nil
}
