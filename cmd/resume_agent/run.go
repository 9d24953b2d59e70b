package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Evaluate and generate in one step, approving the suggestions automatically",
	RunE:  runPipelineCmd,
}

var (
	runResume  string
	runJob     string
	runJobText string
	runJobURL  string
)

func init() {
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to the resume (PDF or text)")
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to the job description (PDF or text)")
	runCommand.Flags().StringVar(&runJobText, "job-text", "", "Job description text")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL of the job posting to fetch")

	_ = runCommand.MarkFlagRequired("resume")
	runCommand.MarkFlagsMutuallyExclusive("job", "job-text", "job-url")
	runCommand.MarkFlagsOneRequired("job", "job-text", "job-url")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	ctx := cmd.Context()
	state, err := newRunState(ctx, a, runResume, jobInput{path: runJob, text: runJobText, url: runJobURL})
	if err != nil {
		return err
	}

	controller, err := a.controller(ctx)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	done, err := controller.WithProgress(printer.PrintProgress).Run(ctx, state)
	if err != nil {
		return err
	}
	printer.PrintSuggestions(done.Suggestions)

	rec, err := publish(ctx, a, done)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), printer, done, rec)
	return nil
}
