package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/recorder"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage recorded generations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded generations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one generation, including the final resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one generation record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the generation history to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

var historyExportOut string

func init() {
	historyExportCmd.Flags().StringVarP(&historyExportOut, "out", "o", "history.xlsx", "Workbook path")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	a, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	records, err := store.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(records)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	rec, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("generation %d: %w", id, recorder.ErrNotFound)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintRecord(rec)
	if critique, err := recorder.DecodeCritique(rec.FinalCritique); err == nil && critique != nil {
		printer.PrintCritique("FINAL CRITIQUE", critique)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", rec.FinalResume)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if err := store.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("generation %d: %w", id, err)
	}
	a.log.Info("generation deleted", zap.Int64("generation_id", id))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted generation #%d\n", id)
	return nil
}

func runHistoryExport(cmd *cobra.Command, _ []string) error {
	a, store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	records, err := store.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	if err := export.WriteHistoryWorkbook(records, historyExportOut); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d generation(s) to %s\n", len(records), historyExportOut)
	return nil
}

func openHistory(cmd *cobra.Command) (*app, recorder.Store, error) {
	a, err := setup()
	if err != nil {
		return nil, nil, err
	}
	store, err := a.store(cmd.Context())
	if err != nil {
		_ = a.close()
		return nil, nil, err
	}
	return a, store, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid generation id %q: must be a positive integer", arg)
	}
	return id, nil
}
