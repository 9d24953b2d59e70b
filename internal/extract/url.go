package extract

import (
	"context"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

// FromURL downloads a job posting and returns its description text.
func FromURL(ctx context.Context, url string, opts *fetch.Options) (string, error) {
	page, err := fetch.JobPosting(ctx, url, opts)
	if err != nil {
		return "", &ExtractionError{Source: url, Message: "failed to fetch job posting", Cause: err}
	}

	text := CleanText(page.Text)
	if text == "" {
		return "", &ExtractionError{Source: url, Message: "job posting is empty"}
	}
	return text, nil
}
