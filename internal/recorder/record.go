package recorder

import (
	"encoding/json"
	"time"

	"github.com/jonathan/resume-tailor/internal/types"
)

// OutputPaths are the files written for a finished run. PDF is empty when no PDF could be produced.
type OutputPaths struct {
	Markdown string `json:"markdown"`
	PDF      string `json:"pdf,omitempty"`
}

// GenerationRecord is the persisted copy of a finished run. Structured fields are stored as JSON text.
type GenerationRecord struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	JobTitle        string    `json:"job_title"`
	Company         string    `json:"company"`
	OriginalResume  string    `json:"original_resume"`
	JobDescription  string    `json:"job_description"`
	Requirements    string    `json:"requirements"`
	InitialCritique string    `json:"initial_critique"`
	Suggestions     string    `json:"suggestions"`
	FinalResume     string    `json:"final_resume"`
	FinalCritique   string    `json:"final_critique"`
	Iterations      int       `json:"iterations"`
	FinalScore      float64   `json:"final_score"`
	MarkdownPath    string    `json:"markdown_path"`
	PDFPath         string    `json:"pdf_path"`
	Metadata        string    `json:"metadata"`
}

// NewRecord snapshots a finished state. The record shares no memory with the state.
func NewRecord(state *types.RunState, paths OutputPaths) (*GenerationRecord, error) {
	rec := &GenerationRecord{
		Timestamp:      time.Now().UTC(),
		JobTitle:       types.UnknownValue,
		Company:        types.UnknownValue,
		OriginalResume: state.OriginalResume,
		JobDescription: state.JobDescription,
		FinalResume:    state.FinalResume,
		Iterations:     state.Iteration,
		MarkdownPath:   paths.Markdown,
		PDFPath:        paths.PDF,
	}
	if r := state.Requirements; r != nil {
		if r.JobTitle != "" {
			rec.JobTitle = r.JobTitle
		}
		if r.Company != "" {
			rec.Company = r.Company
		}
	}
	if state.Critique != nil {
		rec.FinalScore = state.Critique.OverallScore
	}

	var err error
	if rec.Requirements, err = jsonText(state.Requirements, "{}"); err != nil {
		return nil, err
	}
	if rec.InitialCritique, err = jsonText(state.InitialCritique, "{}"); err != nil {
		return nil, err
	}
	if rec.FinalCritique, err = jsonText(state.Critique, "{}"); err != nil {
		return nil, err
	}
	if rec.Suggestions, err = jsonText(state.Suggestions, "[]"); err != nil {
		return nil, err
	}
	if rec.Metadata, err = jsonText(state.Metadata, "{}"); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeCritique parses a stored critique column. Empty objects decode to nil.
func DecodeCritique(text string) (*types.Critique, error) {
	if text == "" || text == "{}" {
		return nil, nil
	}
	var c types.Critique
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, &Error{Op: "decode critique", Cause: err}
	}
	return &c, nil
}

// DecodeSuggestions parses the stored suggestions column.
func DecodeSuggestions(text string) ([]types.Suggestion, error) {
	if text == "" {
		return nil, nil
	}
	var out []types.Suggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &Error{Op: "decode suggestions", Cause: err}
	}
	return out, nil
}

func jsonText[T any](v T, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &Error{Op: "encode record", Cause: err}
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}
