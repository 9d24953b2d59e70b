// Package schemas holds the JSON Schema documents for persisted and submitted run data.
package schemas

import "embed"

// Files contains every *.schema.json document in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Schema file names.
const (
	RunState       = "run_state.schema.json"
	SessionRequest = "session_request.schema.json"
)
