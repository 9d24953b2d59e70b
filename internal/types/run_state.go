// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Status tags the position of a run inside the tailoring workflow.
type Status string

// Workflow states in the order a run normally visits them.
const (
	StatusAnalyze          Status = "ANALYZE"
	StatusCritiqueInitial  Status = "CRITIQUE_INITIAL"
	StatusSuggest          Status = "SUGGEST"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusDraft            Status = "DRAFT"
	StatusCritiqueLoop     Status = "CRITIQUE_LOOP"
	StatusFinalize         Status = "FINALIZE"
	StatusDone             Status = "DONE"
)

// Metadata keys recorded on every run.
const (
	MetaStartTime      = "start_time"
	MetaFinishedAt     = "finished_at"
	MetaResumeFilename = "resume_filename"
	MetaJobSource      = "jd_source"
)

// ErrorKind classifies a degraded stage.
type ErrorKind string

// Stage error kinds.
const (
	ErrorKindInvocation        ErrorKind = "invocation"
	ErrorKindMalformedResponse ErrorKind = "malformed_response"
)

// StageError describes a stage that fell back to a conservative value.
type StageError struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
}

func (e *StageError) String() string {
	if e == nil {
		return ""
	}
	return e.Stage + " failed: " + e.Message
}

// RunState is the record threaded through one tailoring session.
type RunState struct {
	ID              string            `json:"id"`
	OriginalResume  string            `json:"original_resume"`
	JobDescription  string            `json:"job_description"`
	Requirements    *JobRequirements  `json:"requirements,omitempty"`
	DraftResume     string            `json:"draft_resume,omitempty"`
	Suggestions     []Suggestion      `json:"suggestions,omitempty"`
	Critique        *Critique         `json:"critique,omitempty"`
	InitialCritique *Critique         `json:"initial_critique,omitempty"`
	Iteration       int               `json:"iteration"`
	FinalResume     string            `json:"final_resume,omitempty"`
	Error           *StageError       `json:"error,omitempty"`
	Status          Status            `json:"status,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewRunState creates a state with only the two required inputs populated.
func NewRunState(id, resume, jobDescription string) *RunState {
	return &RunState{
		ID:             id,
		OriginalResume: resume,
		JobDescription: jobDescription,
		Status:         StatusAnalyze,
		Metadata: map[string]string{
			MetaStartTime: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// CurrentResume returns the latest draft, or the original resume when no draft exists yet.
func (s *RunState) CurrentResume() string {
	if s.DraftResume != "" {
		return s.DraftResume
	}
	return s.OriginalResume
}

// SetMeta records a metadata value, allocating the map on first use.
func (s *RunState) SetMeta(key, value string) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]string)
	}
	s.Metadata[key] = value
}

// Clone returns a deep copy so a held state can be resumed without aliasing.
func (s *RunState) Clone() *RunState {
	if s == nil {
		return nil
	}
	out := *s
	if s.Requirements != nil {
		out.Requirements = s.Requirements.Clone()
	}
	if s.Critique != nil {
		c := s.Critique.Clone()
		out.Critique = c
	}
	if s.InitialCritique != nil {
		out.InitialCritique = s.InitialCritique.Clone()
	}
	if s.Suggestions != nil {
		out.Suggestions = append([]Suggestion(nil), s.Suggestions...)
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Update is a partial RunState produced by one stage. Nil fields are left untouched.
type Update struct {
	Requirements *JobRequirements
	DraftResume  *string
	Suggestions  []Suggestion
	// SuggestionsSet distinguishes "replace with an empty list" from "untouched".
	SuggestionsSet bool
	Critique       *Critique
	Iteration      *int
	FinalResume    *string
	Error          *StageError
	Status         Status
}

// Apply merges an update into the state, last writer wins per field.
// Iteration is only ever moved forward, except the explicit reset to zero issued by analysis.
func (s *RunState) Apply(u Update) {
	if u.Requirements != nil {
		s.Requirements = u.Requirements
	}
	if u.DraftResume != nil {
		s.DraftResume = *u.DraftResume
	}
	if u.SuggestionsSet {
		s.Suggestions = u.Suggestions
	}
	if u.Critique != nil {
		s.Critique = u.Critique
	}
	if u.Iteration != nil && (*u.Iteration == 0 || *u.Iteration > s.Iteration) {
		s.Iteration = *u.Iteration
	}
	if u.FinalResume != nil {
		s.FinalResume = *u.FinalResume
	}
	if u.Error != nil {
		s.Error = u.Error
	}
	if u.Status != "" {
		s.Status = u.Status
	}
}

// Suggestion is a category-tagged recommendation.
type Suggestion struct {
	Category   string `json:"category"`
	Suggestion string `json:"suggestion"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
