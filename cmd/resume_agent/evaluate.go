package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/extract"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Job description sources recorded in run metadata.
const (
	sourceText = "text"
	sourceFile = "file"
	sourceURL  = "url"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Analyze a job, score the resume and propose improvements",
	Long: `Runs the first half of a tailoring session: the job description is analyzed, the resume is scored
against it and improvement suggestions are generated. The paused session is written to --session;
approve it with "resume_agent generate --session <file>".`,
	RunE: runEvaluate,
}

var (
	evalResume  string
	evalJob     string
	evalJobText string
	evalJobURL  string
	evalSession string
)

func init() {
	evaluateCmd.Flags().StringVarP(&evalResume, "resume", "r", "", "Path to the resume (PDF or text)")
	evaluateCmd.Flags().StringVarP(&evalJob, "job", "j", "", "Path to the job description (PDF or text)")
	evaluateCmd.Flags().StringVar(&evalJobText, "job-text", "", "Job description text")
	evaluateCmd.Flags().StringVar(&evalJobURL, "job-url", "", "URL of the job posting to fetch")
	evaluateCmd.Flags().StringVarP(&evalSession, "session", "s", "session.json", "Where to write the paused session")

	_ = evaluateCmd.MarkFlagRequired("resume")
	evaluateCmd.MarkFlagsMutuallyExclusive("job", "job-text", "job-url")
	evaluateCmd.MarkFlagsOneRequired("job", "job-text", "job-url")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	ctx := cmd.Context()
	state, err := newRunState(ctx, a, evalResume, jobInput{path: evalJob, text: evalJobText, url: evalJobURL})
	if err != nil {
		return err
	}

	controller, err := a.controller(ctx)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	paused, err := controller.WithProgress(printer.PrintProgress).Evaluate(ctx, state)
	if err != nil {
		return err
	}

	printer.PrintRequirements(paused.Requirements)
	printer.PrintCritique("INITIAL CRITIQUE", paused.InitialCritique)
	printer.PrintSuggestions(paused.Suggestions)
	printer.PrintStageError(paused.Error)

	if err := workflow.SaveSession(evalSession, paused); err != nil {
		return err
	}
	a.log.Info("session saved", zap.String("run_id", paused.ID), zap.String("path", evalSession))

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nSession saved to %s\nApprove with: resume_agent generate --session %s\n", evalSession, evalSession)
	return nil
}

// jobInput names exactly one job description source.
type jobInput struct {
	path string
	text string
	url  string
}

// newRunState extracts both documents and returns a fresh run tagged with their sources.
func newRunState(ctx context.Context, a *app, resumePath string, job jobInput) (*types.RunState, error) {
	resume, err := extract.FromFile(resumePath)
	if err != nil {
		return nil, err
	}

	var jd, source string
	switch {
	case job.url != "":
		jd, err = extract.FromURL(ctx, job.url, a.fetchOptions())
		source = sourceURL
	case job.path != "":
		jd, err = extract.FromFile(job.path)
		source = sourceFile
	default:
		jd, err = extract.FromBytes("job.txt", []byte(job.text))
		source = sourceText
	}
	if err != nil {
		return nil, err
	}

	state := types.NewRunState(uuid.NewString(), resume, jd)
	state.SetMeta(types.MetaResumeFilename, filepath.Base(resumePath))
	state.SetMeta(types.MetaJobSource, source)
	return state, nil
}
