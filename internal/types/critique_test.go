//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCritique_Approve(t *testing.T) {
	tests := []struct {
		name      string
		overall   float64
		threshold float64
		want      bool
	}{
		{"below threshold", 7.9, 8.0, false},
		{"at threshold", 8.0, 8.0, true},
		{"above threshold", 9.5, 8.0, true},
		{"zero threshold approves zero", 0, 0, true},
		{"max threshold", 9.99, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Critique{OverallScore: tt.overall, Approved: !tt.want}
			c.Approve(tt.threshold)
			assert.Equal(t, tt.want, c.Approved)
		})
	}
}

func TestCritique_ApproveMatchesRuleForAllScores(t *testing.T) {
	for _, threshold := range []float64{0, 2.5, 8.0, 8.5, 10} {
		for score := 0.0; score <= 10.0; score += 0.25 {
			c := &Critique{OverallScore: score}
			c.Approve(threshold)
			assert.Equal(t, score >= threshold, c.Approved, "score=%v threshold=%v", score, threshold)
		}
	}
}

func TestCritique_Clamp(t *testing.T) {
	c := &Critique{OverallScore: 12, KeywordScore: -3, ATSScore: 5}
	c.Clamp()

	assert.Equal(t, 10.0, c.OverallScore)
	assert.Equal(t, 0.0, c.KeywordScore)
	assert.Equal(t, 5.0, c.ATSScore)
}

func TestFallbackCritique(t *testing.T) {
	c := FallbackCritique("Critique failed: timeout")

	for _, s := range c.Subscores() {
		assert.Zero(t, s)
	}
	assert.Zero(t, c.OverallScore)
	assert.False(t, c.Approved)
	assert.Empty(t, c.ImprovementsNeeded)
	assert.Equal(t, "Critique failed: timeout", c.Feedback)
}

func TestJobRequirements_Normalize(t *testing.T) {
	r := &JobRequirements{
		JobTitle:       "  ",
		Company:        " Acme ",
		RequiredSkills: []string{"Go", " ", "Kubernetes "},
	}
	r.Normalize()

	assert.Equal(t, UnknownValue, r.JobTitle)
	assert.Equal(t, "Acme", r.Company)
	assert.Equal(t, []string{"Go", "Kubernetes"}, r.RequiredSkills)
	assert.NotNil(t, r.KeyResponsibilities)
	assert.NotNil(t, r.ATSKeywords)
}

func TestJobRequirements_Keywords(t *testing.T) {
	r := &JobRequirements{
		RequiredSkills: []string{"Go", "Kubernetes"},
		ATSKeywords:    []string{"go", "CI/CD"},
	}
	assert.Equal(t, []string{"Go", "Kubernetes", "CI/CD"}, r.Keywords())

	var nilReq *JobRequirements
	assert.Nil(t, nilReq.Keywords())
}
