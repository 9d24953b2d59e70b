package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-tailor/internal/recorder"
)

const historySheet = "History"

var historyHeaders = []string{
	"ID",
	"Timestamp",
	"Job Title",
	"Company",
	"Iterations",
	"Final Score",
	"Markdown",
	"PDF",
}

// HistoryWorkbook builds a one-sheet workbook summarizing generation records.
// The caller owns the returned file and must close it.
func HistoryWorkbook(records []recorder.GenerationRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		_ = f.Close()
		return nil, &WriteError{Path: historySheet, Message: "failed to name sheet", Cause: err}
	}

	for i, h := range historyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}

	for i, rec := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}
		write(1, rec.ID)
		write(2, rec.Timestamp.UTC().Format("2006-01-02 15:04:05"))
		write(3, rec.JobTitle)
		write(4, rec.Company)
		write(5, rec.Iterations)
		write(6, fmt.Sprintf("%.1f", rec.FinalScore))
		write(7, rec.MarkdownPath)
		write(8, rec.PDFPath)
	}

	_ = f.SetColWidth(historySheet, "B", "B", 20)
	_ = f.SetColWidth(historySheet, "C", "D", 28)
	_ = f.SetColWidth(historySheet, "G", "H", 40)
	return f, nil
}

// WriteHistoryWorkbook writes the history workbook to path.
func WriteHistoryWorkbook(records []recorder.GenerationRecord, path string) error {
	f, err := HistoryWorkbook(records)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Message: "failed to create output directory", Cause: err}
	}
	if err := f.SaveAs(path); err != nil {
		return &WriteError{Path: path, Message: "failed to save workbook", Cause: err}
	}
	return nil
}
