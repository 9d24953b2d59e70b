package workflow

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// EncodeState serializes a run for storage between the evaluate and generate phases.
func EncodeState(state *types.RunState) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

// DecodeState validates a serialized run against the run state schema and decodes it.
func DecodeState(data []byte) (*types.RunState, error) {
	if err := schemas.Validate(schemas.RunState, data); err != nil {
		return nil, err
	}
	var state types.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveSession writes a run to path so it can be resumed later. Paused runs never expire.
func SaveSession(path string, state *types.RunState) error {
	data, err := EncodeState(state)
	if err != nil {
		return &SessionError{Path: path, Message: "failed to encode run", Cause: err}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &SessionError{Path: path, Message: "failed to create directory", Cause: err}
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &SessionError{Path: path, Message: "failed to write session", Cause: err}
	}
	return nil
}

// LoadSession reads and validates a run saved by SaveSession.
func LoadSession(path string) (*types.RunState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SessionError{Path: path, Message: "failed to read session", Cause: err}
	}
	state, err := DecodeState(data)
	if err != nil {
		return nil, &SessionError{Path: path, Message: "invalid session file", Cause: err}
	}
	return state, nil
}
