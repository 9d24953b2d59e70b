package stages

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/types"
)

// CategoryGeneral is used for suggestions without a category.
const CategoryGeneral = "General"

// requirementsFrom reads a requirements record leniently. Missing fields take their defaults.
func requirementsFrom(rec *parsing.Record) *types.JobRequirements {
	root := gjson.ParseBytes(rec.Raw)
	req := &types.JobRequirements{
		JobTitle:            root.Get("job_title").String(),
		Company:             root.Get("company").String(),
		RequiredSkills:      stringList(root.Get("required_skills")),
		KeyResponsibilities: stringList(root.Get("key_responsibilities")),
		ATSKeywords:         stringList(root.Get("ats_keywords")),
	}
	// Older prompts asked for "keywords"
	if len(req.ATSKeywords) == 0 {
		req.ATSKeywords = stringList(root.Get("keywords"))
	}
	req.Normalize()
	return req
}

var subscoreKeys = []string{"keyword_score", "experience_score", "ats_score", "formatting_score", "accuracy_score"}

// critiqueFrom reads a critique leniently and derives the approval flag from the threshold.
// A missing overall score becomes the mean of the subscores that were present.
func critiqueFrom(rec *parsing.Record, threshold float64) *types.Critique {
	root := gjson.ParseBytes(rec.Raw)

	scores := make([]float64, len(subscoreKeys))
	var sum float64
	var present int
	for i, key := range subscoreKeys {
		v := root.Get(key)
		if !v.Exists() {
			continue
		}
		scores[i] = v.Float()
		sum += types.ClampScore(scores[i])
		present++
	}

	c := &types.Critique{
		KeywordScore:       scores[0],
		ExperienceScore:    scores[1],
		ATSScore:           scores[2],
		FormattingScore:    scores[3],
		AccuracyScore:      scores[4],
		Feedback:           strings.TrimSpace(root.Get("feedback").String()),
		ImprovementsNeeded: stringList(root.Get("improvements_needed")),
	}
	if overall := root.Get("overall_score"); overall.Exists() {
		c.OverallScore = overall.Float()
	} else if present > 0 {
		c.OverallScore = sum / float64(present)
	}

	c.Clamp()
	c.Approve(threshold)
	return c
}

// suggestionsFrom reads the suggestions array. Plain strings are accepted as General suggestions.
func suggestionsFrom(rec *parsing.Record) []types.Suggestion {
	out := []types.Suggestion{}
	gjson.GetBytes(rec.Raw, "suggestions").ForEach(func(_, item gjson.Result) bool {
		var s types.Suggestion
		if item.IsObject() {
			s.Category = strings.TrimSpace(item.Get("category").String())
			s.Suggestion = strings.TrimSpace(item.Get("suggestion").String())
			if s.Suggestion == "" {
				s.Suggestion = strings.TrimSpace(item.Get("description").String())
			}
		} else {
			s.Suggestion = strings.TrimSpace(item.String())
		}
		if s.Suggestion == "" {
			return true
		}
		if s.Category == "" {
			s.Category = CategoryGeneral
		}
		out = append(out, s)
		return true
	})
	return out
}

// stringList accepts a JSON array or a single string.
func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.Exists() {
		return out
	}
	if !v.IsArray() {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return out
	}
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FlattenSuggestions renders suggestions as "- Category: text" lines for the draft prompt.
func FlattenSuggestions(suggestions []types.Suggestion) string {
	if len(suggestions) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		lines = append(lines, "- "+s.Category+": "+s.Suggestion)
	}
	return strings.Join(lines, "\n")
}
