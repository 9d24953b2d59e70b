package types

// Score bounds for every critique score.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Critique scores a resume against a set of job requirements.
type Critique struct {
	OverallScore       float64  `json:"overall_score"`
	KeywordScore       float64  `json:"keyword_score"`
	ExperienceScore    float64  `json:"experience_score"`
	ATSScore           float64  `json:"ats_score"`
	FormattingScore    float64  `json:"formatting_score"`
	AccuracyScore      float64  `json:"accuracy_score"`
	Feedback           string   `json:"feedback"`
	ImprovementsNeeded []string `json:"improvements_needed"`
	Approved           bool     `json:"approved"`
}

// Subscores returns the five component scores in a fixed order.
func (c *Critique) Subscores() []float64 {
	return []float64{c.KeywordScore, c.ExperienceScore, c.ATSScore, c.FormattingScore, c.AccuracyScore}
}

// Approve recomputes the approval flag. It is the only place Approved is written.
func (c *Critique) Approve(threshold float64) {
	c.Approved = c.OverallScore >= threshold
}

// Clamp bounds every score to the 0-10 range.
func (c *Critique) Clamp() {
	c.OverallScore = ClampScore(c.OverallScore)
	c.KeywordScore = ClampScore(c.KeywordScore)
	c.ExperienceScore = ClampScore(c.ExperienceScore)
	c.ATSScore = ClampScore(c.ATSScore)
	c.FormattingScore = ClampScore(c.FormattingScore)
	c.AccuracyScore = ClampScore(c.AccuracyScore)
}

// Clone returns a deep copy.
func (c *Critique) Clone() *Critique {
	if c == nil {
		return nil
	}
	out := *c
	out.ImprovementsNeeded = append([]string(nil), c.ImprovementsNeeded...)
	return &out
}

// FallbackCritique is the all-zero, unapproved critique used when scoring fails.
func FallbackCritique(feedback string) *Critique {
	return &Critique{
		Feedback:           feedback,
		ImprovementsNeeded: []string{},
		Approved:           false,
	}
}

// ClampScore bounds v to [MinScore, MaxScore].
func ClampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
