// Package stages implements the LLM-backed transformation steps of a tailoring run.
// Every stage consumes the accumulated RunState and returns a partial update. Backend and
// parse failures never escape a stage: they become a conservative fallback value plus a
// StageError on the update.
package stages

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Stage names used in progress events, logs and stage errors.
const (
	NameAnalyze  = "analyze"
	NameCritique = "critique"
	NameSuggest  = "suggest"
	NameDraft    = "draft"
	NameFinalize = "finalize"
)

// Fixed sampling temperatures for the stages that are not configurable.
const (
	TemperatureCritique = 0.1
	TemperatureSuggest  = 0.6
	TemperatureFinalize = 0.5
)

// Completer is the subset of the invoker the stages need.
type Completer interface {
	Invoke(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

// Settings carries the configurable knobs the stages read.
type Settings struct {
	ApprovalThreshold     float64
	TemperatureAnalysis   float64
	TemperatureGeneration float64
}

// Stages runs the individual pipeline steps against one backend.
type Stages struct {
	llm      Completer
	settings Settings
	logger   *zap.Logger
}

// New creates the stage set.
func New(completer Completer, settings Settings, log *zap.Logger) *Stages {
	return &Stages{
		llm:      completer,
		settings: settings,
		logger:   logger.WithFields(log),
	}
}

// Settings returns the configured knobs.
func (s *Stages) Settings() Settings {
	return s.settings
}

// stageError converts a failure into the descriptor carried on the run state.
func (s *Stages) stageError(stage string, state *types.RunState, err error) *types.StageError {
	kind := types.ErrorKindInvocation
	var malformed *parsing.MalformedResponseError
	if errors.As(err, &malformed) {
		kind = types.ErrorKindMalformedResponse
	}

	fields := append(logger.StageFields(stage, state.Iteration), zap.String("kind", string(kind)), zap.Error(err))
	logger.WithRun(s.logger, state.ID).Warn("stage degraded to fallback", fields...)

	return &types.StageError{Kind: kind, Stage: stage, Message: err.Error()}
}

func (s *Stages) completed(stage string, state *types.RunState, fields ...zap.Field) {
	fields = append(logger.StageFields(stage, state.Iteration), fields...)
	logger.WithRun(s.logger, state.ID).Info("stage completed", fields...)
}

// render fills a tailoring prompt. Prompt files are embedded, so a missing key is a programming error.
func render(key string, data map[string]string) string {
	return prompts.Format(prompts.MustGet(prompts.TailoringFile, key), data)
}

func systemPrompt(key string) llm.Message {
	return llm.System(prompts.MustGet(prompts.TailoringFile, key))
}

// requirementsJSON renders the requirements for a prompt, using the fallback record when absent.
func requirementsJSON(r *types.JobRequirements) string {
	if r == nil {
		r = types.FallbackRequirements()
	}
	return indentJSON(r)
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
