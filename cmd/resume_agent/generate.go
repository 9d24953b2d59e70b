package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/recorder"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Approve an evaluated session and write the tailored resume",
	Long: `Resumes a session saved by "evaluate": drafts and critiques the resume until it is approved or the
iteration cap is reached, finalizes it, writes Markdown (and PDF when Chrome is available) and records the
generation in the history database.`,
	RunE: runGenerate,
}

var generateSession string

func init() {
	generateCmd.Flags().StringVarP(&generateSession, "session", "s", "session.json", "Session file written by evaluate")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	paused, err := workflow.LoadSession(generateSession)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	controller, err := a.controller(ctx)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	done, err := controller.WithProgress(printer.PrintProgress).Resume(ctx, paused)
	if err != nil {
		return err
	}

	rec, err := publish(ctx, a, done)
	if err != nil {
		return err
	}

	// The session now holds the finished run, so it cannot be generated twice
	if err := workflow.SaveSession(generateSession, done); err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), printer, done, rec)
	return nil
}

// publish exports a finished run and records it in the history store.
func publish(ctx context.Context, a *app, done *types.RunState) (*recorder.GenerationRecord, error) {
	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}
	return a.exporter().Publish(ctx, done, store)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func printResult(out io.Writer, printer *observability.Printer, done *types.RunState, rec *recorder.GenerationRecord) {
	printer.PrintCritique("FINAL CRITIQUE", done.Critique)
	printer.PrintScoreChange(done.InitialCritique, done.Critique)
	printer.PrintStageError(done.Error)

	fmt.Fprintf(out, "\nGeneration #%d recorded after %d iteration(s)\n", rec.ID, rec.Iterations)
	fmt.Fprintf(out, "Markdown: %s\n", rec.MarkdownPath)
	if rec.PDFPath != "" {
		fmt.Fprintf(out, "PDF:      %s\n", rec.PDFPath)
	} else {
		fmt.Fprintln(out, "PDF:      unavailable (Chrome not found or PDF export disabled)")
	}
}
