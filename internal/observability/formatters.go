// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/recorder"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit bullet items followed by a "... and N more" line.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		fmt.Fprintf(sb, "  • %s\n", items[i])
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintRequirements outputs a human-readable summary of the analyzed job posting.
func (p *Printer) PrintRequirements(req *types.JobRequirements) {
	if req == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Company:  %s\n", req.Company)
	fmt.Fprintf(&sb, "Role:     %s\n", req.JobTitle)
	sb.WriteString("\n")

	if len(req.RequiredSkills) > 0 {
		sb.WriteString("Required Skills:\n")
		writeList(&sb, req.RequiredSkills, maxItemsToShow)
		sb.WriteString("\n")
	}
	if len(req.KeyResponsibilities) > 0 {
		sb.WriteString("Responsibilities:\n")
		writeList(&sb, req.KeyResponsibilities, 3)
		sb.WriteString("\n")
	}
	if len(req.ATSKeywords) > 0 {
		fmt.Fprintf(&sb, "ATS Keywords: %s\n", strings.Join(req.ATSKeywords, ", "))
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCritique outputs the score card for a critique.
func (p *Printer) PrintCritique(title string, c *types.Critique) {
	if c == nil {
		return
	}

	var sb strings.Builder
	verdict := "✗ needs work"
	if c.Approved {
		verdict = "✓ approved"
	}
	fmt.Fprintf(&sb, "Overall:     %.1f/10  %s\n\n", c.OverallScore, verdict)
	fmt.Fprintf(&sb, "Keywords:    %.1f/10\n", c.KeywordScore)
	fmt.Fprintf(&sb, "Experience:  %.1f/10\n", c.ExperienceScore)
	fmt.Fprintf(&sb, "ATS:         %.1f/10\n", c.ATSScore)
	fmt.Fprintf(&sb, "Formatting:  %.1f/10\n", c.FormattingScore)
	fmt.Fprintf(&sb, "Accuracy:    %.1f/10\n", c.AccuracyScore)

	if c.Feedback != "" {
		sb.WriteString("\n")
		sb.WriteString(c.Feedback)
		sb.WriteString("\n")
	}
	if len(c.ImprovementsNeeded) > 0 {
		sb.WriteString("\nImprovements:\n")
		writeList(&sb, c.ImprovementsNeeded, maxItemsToShow)
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScoreChange outputs the overall score before and after tailoring.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintScoreChange(initial, final *types.Critique) {
	if initial == nil || final == nil {
		return
	}
	delta := final.OverallScore - initial.OverallScore
	fmt.Fprintf(p.out, "Score: %.1f → %.1f (%+.1f)\n", initial.OverallScore, final.OverallScore, delta)
}

// PrintSuggestions outputs the numbered improvement suggestions awaiting approval.
func (p *Printer) PrintSuggestions(suggestions []types.Suggestion) {
	if len(suggestions) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range suggestions {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, s.Category, s.Suggestion)
	}

	p.printBox(fmt.Sprintf("SUGGESTIONS (%d)", len(suggestions)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStageError outputs the degraded stage, if any.
func (p *Printer) PrintStageError(err *types.StageError) {
	if err == nil {
		return
	}
	p.printBox("⚠ STAGE DEGRADED", fmt.Sprintf("Stage:  %s\nKind:   %s\n\n%s", err.Stage, err.Kind, err.Message))
}

// PrintProgress writes one line per progress event.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event workflow.ProgressEvent) {
	marker := "•"
	switch event.Phase {
	case workflow.PhaseCompleted, workflow.PhaseDone:
		marker = "✓"
	case workflow.PhaseDegraded:
		marker = "⚠"
	case workflow.PhasePaused:
		marker = "⏸"
	case workflow.PhaseDecision:
		marker = "→"
	}
	fmt.Fprintf(p.out, "%s [%s] %s\n", marker, event.Status, event.Message)
}

// PrintHistory outputs a table of generation records, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(records []recorder.GenerationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, "No generations recorded yet.")
		return
	}

	var sb strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&sb, "#%d  %s\n", rec.ID, rec.Timestamp.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(&sb, "    %s @ %s\n", rec.JobTitle, rec.Company)
		fmt.Fprintf(&sb, "    Score: %.1f  Iterations: %d\n", rec.FinalScore, rec.Iterations)
		if i < len(records)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("GENERATION HISTORY (%d)", len(records)), sb.String())
}

// PrintRecord outputs the detail view of a single generation.
func (p *Printer) PrintRecord(rec *recorder.GenerationRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:          %d\n", rec.ID)
	fmt.Fprintf(&sb, "Created:     %s\n", rec.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Role:        %s\n", rec.JobTitle)
	fmt.Fprintf(&sb, "Company:     %s\n", rec.Company)
	fmt.Fprintf(&sb, "Iterations:  %d\n", rec.Iterations)
	fmt.Fprintf(&sb, "Final score: %.1f\n", rec.FinalScore)
	fmt.Fprintf(&sb, "Markdown:    %s\n", rec.MarkdownPath)
	pdf := rec.PDFPath
	if pdf == "" {
		pdf = "(unavailable)"
	}
	fmt.Fprintf(&sb, "PDF:         %s", pdf)

	p.printBox("GENERATION", sb.String())

	if c, err := recorder.DecodeCritique(rec.FinalCritique); err == nil && c != nil {
		p.PrintCritique("FINAL CRITIQUE", c)
	}
}
