package types

import "strings"

// UnknownValue is used for job title and company when analysis could not determine them.
const UnknownValue = "Unknown"

// JobRequirements is the structured record extracted from a job posting.
type JobRequirements struct {
	JobTitle            string   `json:"job_title"`
	Company             string   `json:"company"`
	RequiredSkills      []string `json:"required_skills"`
	KeyResponsibilities []string `json:"key_responsibilities"`
	ATSKeywords         []string `json:"ats_keywords"`
}

// FallbackRequirements is the conservative record used when analysis fails.
func FallbackRequirements() *JobRequirements {
	return &JobRequirements{
		JobTitle:            UnknownValue,
		Company:             UnknownValue,
		RequiredSkills:      []string{},
		KeyResponsibilities: []string{},
		ATSKeywords:         []string{},
	}
}

// Normalize fills missing fields with defaults and drops blank list entries.
func (r *JobRequirements) Normalize() {
	r.JobTitle = strings.TrimSpace(r.JobTitle)
	if r.JobTitle == "" {
		r.JobTitle = UnknownValue
	}
	r.Company = strings.TrimSpace(r.Company)
	if r.Company == "" {
		r.Company = UnknownValue
	}
	r.RequiredSkills = compact(r.RequiredSkills)
	r.KeyResponsibilities = compact(r.KeyResponsibilities)
	r.ATSKeywords = compact(r.ATSKeywords)
}

// Keywords returns required skills followed by ATS keywords, de-duplicated case-insensitively.
func (r *JobRequirements) Keywords() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{r.RequiredSkills, r.ATSKeywords} {
		for _, k := range list {
			key := strings.ToLower(k)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, k)
		}
	}
	return out
}

// Clone returns a deep copy.
func (r *JobRequirements) Clone() *JobRequirements {
	if r == nil {
		return nil
	}
	out := *r
	out.RequiredSkills = append([]string(nil), r.RequiredSkills...)
	out.KeyResponsibilities = append([]string(nil), r.KeyResponsibilities...)
	out.ATSKeywords = append([]string(nil), r.ATSKeywords...)
	return &out
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
