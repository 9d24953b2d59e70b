package recorder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func finishedState() *types.RunState {
	state := types.NewRunState("run-1", "original resume", "job description")
	state.Requirements = &types.JobRequirements{
		JobTitle:       "Backend Engineer",
		Company:        "Acme",
		RequiredSkills: []string{"Go", "Postgres"},
	}
	state.InitialCritique = &types.Critique{OverallScore: 5.5, Feedback: "thin"}
	state.Critique = &types.Critique{OverallScore: 8.5, Approved: true}
	state.Suggestions = []types.Suggestion{{Category: "Skills", Suggestion: "Lead with Go"}}
	state.Iteration = 2
	state.FinalResume = "final resume"
	state.Status = types.StatusDone
	return state
}

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord(finishedState(), OutputPaths{Markdown: "out/resume.md", PDF: "out/resume.pdf"})
	require.NoError(t, err)

	assert.Zero(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, "original resume", rec.OriginalResume)
	assert.Equal(t, "final resume", rec.FinalResume)
	assert.Equal(t, 2, rec.Iterations)
	assert.InDelta(t, 8.5, rec.FinalScore, 1e-9)
	assert.Equal(t, "out/resume.md", rec.MarkdownPath)
	assert.Equal(t, "out/resume.pdf", rec.PDFPath)

	var req types.JobRequirements
	require.NoError(t, json.Unmarshal([]byte(rec.Requirements), &req))
	assert.Equal(t, []string{"Go", "Postgres"}, req.RequiredSkills)

	initial, err := DecodeCritique(rec.InitialCritique)
	require.NoError(t, err)
	require.NotNil(t, initial)
	assert.Equal(t, "thin", initial.Feedback)

	suggestions, err := DecodeSuggestions(rec.Suggestions)
	require.NoError(t, err)
	assert.Equal(t, []types.Suggestion{{Category: "Skills", Suggestion: "Lead with Go"}}, suggestions)

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(rec.Metadata), &meta))
	assert.Contains(t, meta, types.MetaStartTime)
}

func TestNewRecord_EmptyState(t *testing.T) {
	state := &types.RunState{OriginalResume: "r", JobDescription: "j"}

	rec, err := NewRecord(state, OutputPaths{})
	require.NoError(t, err)

	assert.Equal(t, types.UnknownValue, rec.JobTitle)
	assert.Equal(t, types.UnknownValue, rec.Company)
	assert.Equal(t, "{}", rec.Requirements)
	assert.Equal(t, "{}", rec.FinalCritique)
	assert.Equal(t, "[]", rec.Suggestions)
	assert.Equal(t, "{}", rec.Metadata)
	assert.Zero(t, rec.FinalScore)
	assert.Empty(t, rec.PDFPath)

	c, err := DecodeCritique(rec.FinalCritique)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRecord_DoesNotAliasState(t *testing.T) {
	state := finishedState()
	rec, err := NewRecord(state, OutputPaths{})
	require.NoError(t, err)

	state.Requirements.JobTitle = "Changed"
	state.Suggestions[0].Suggestion = "Changed"

	assert.Equal(t, "Backend Engineer", rec.JobTitle)
	assert.NotContains(t, rec.Suggestions, "Changed")
}

func TestDecode_Invalid(t *testing.T) {
	_, err := DecodeCritique("{not json")
	var recErr *Error
	assert.ErrorAs(t, err, &recErr)

	_, err = DecodeSuggestions("nope")
	assert.ErrorAs(t, err, &recErr)
}
