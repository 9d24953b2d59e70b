// Package export writes finished résumés to disk as Markdown and PDF.
package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/recorder"
)

// DefaultPDFTimeout bounds one headless Chrome print.
const DefaultPDFTimeout = 60 * time.Second

const filenameLayout = "20060102_150405"

// runTagLength is how many run ID characters go into a file name.
const runTagLength = 8

// maxNameAttempts bounds the search for a free base name.
const maxNameAttempts = 100

// Exporter writes output files into one directory.
type Exporter struct {
	dir        string
	pdfEnabled bool
	print      PrintFunc
	now        func() time.Time
	logger     *zap.Logger
}

// New creates an exporter for dir. With pdfEnabled false, WritePDF always reports unavailable.
func New(dir string, pdfEnabled bool, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		dir:        dir,
		pdfEnabled: pdfEnabled,
		print:      ChromePrinter(DefaultPDFTimeout),
		now:        time.Now,
		logger:     log,
	}
}

// WithPrinter replaces the HTML to PDF printer.
func (e *Exporter) WithPrinter(fn PrintFunc) *Exporter {
	e.print = fn
	return e
}

// WithClock replaces the clock used for file names.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// WriteMarkdown writes text to a new resume_YYYYMMDD_HHMMSS_<tag>.md file and returns the path.
func (e *Exporter) WriteMarkdown(text string) (string, error) {
	base, err := e.reserve("")
	if err != nil {
		return "", err
	}
	path, err := e.writeMarkdown(base, text)
	if err != nil {
		e.remove(filepath.Join(e.dir, base+".md"))
	}
	return path, err
}

// WritePDF renders text and prints it to PDF. It returns ("", false) when PDF output is
// disabled or printing fails; the failure is logged, never returned.
func (e *Exporter) WritePDF(ctx context.Context, text string) (string, bool) {
	return e.writePDF(ctx, e.basename(""), text)
}

// Export writes the Markdown and PDF files for one run concurrently under one base name.
// The base name carries the run ID and is reserved exclusively, so runs finishing in the
// same second never share files. On failure nothing is left behind.
func (e *Exporter) Export(ctx context.Context, runID, text string) (recorder.OutputPaths, error) {
	base, err := e.reserve(runID)
	if err != nil {
		return recorder.OutputPaths{}, err
	}
	var paths recorder.OutputPaths

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		path, err := e.writeMarkdown(base, text)
		paths.Markdown = path
		return err
	})
	g.Go(func() error {
		if path, ok := e.writePDF(gCtx, base, text); ok {
			paths.PDF = path
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		e.Discard(recorder.OutputPaths{Markdown: filepath.Join(e.dir, base+".md"), PDF: paths.PDF})
		return recorder.OutputPaths{}, err
	}
	return paths, nil
}

// Discard removes exported files. Missing files are ignored.
func (e *Exporter) Discard(paths recorder.OutputPaths) {
	e.remove(paths.Markdown)
	e.remove(paths.PDF)
}

func (e *Exporter) remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn("failed to remove output file", zap.String("path", path), zap.Error(err))
	}
}

// basename builds resume_<timestamp>_<tag>. The tag is the start of the run ID, or a random
// one when the run ID is empty.
func (e *Exporter) basename(runID string) string {
	return "resume_" + e.now().Format(filenameLayout) + "_" + runTag(runID)
}

// reserve creates an empty Markdown file under a base name nobody else holds and returns the base.
func (e *Exporter) reserve(runID string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", &WriteError{Path: e.dir, Message: "failed to create output directory", Cause: err}
	}

	base := e.basename(runID)
	for n := 1; n <= maxNameAttempts; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		path := filepath.Join(e.dir, name+".md")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_ = f.Close()
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", &WriteError{Path: path, Message: "failed to create markdown", Cause: err}
		}
	}
	return "", &WriteError{Path: filepath.Join(e.dir, base+".md"), Message: "no free output file name"}
}

func runTag(runID string) string {
	var b strings.Builder
	for _, r := range runID {
		if b.Len() == runTagLength {
			break
		}
		if r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return uuid.NewString()[:runTagLength]
	}
	return b.String()
}

func (e *Exporter) writeMarkdown(base, text string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", &WriteError{Path: e.dir, Message: "failed to create output directory", Cause: err}
	}
	path := filepath.Join(e.dir, base+".md")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", &WriteError{Path: path, Message: "failed to write markdown", Cause: err}
	}
	e.logger.Info("wrote markdown", zap.String("path", path))
	return path, nil
}

func (e *Exporter) writePDF(ctx context.Context, base, text string) (string, bool) {
	if !e.pdfEnabled || e.print == nil {
		return "", false
	}

	html, err := RenderHTML(text)
	if err != nil {
		e.logger.Warn("pdf unavailable", zap.Error(err))
		return "", false
	}
	data, err := e.print(ctx, html)
	if err != nil {
		e.logger.Warn("pdf unavailable", zap.Error(err))
		return "", false
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.logger.Warn("pdf unavailable", zap.Error(err))
		return "", false
	}
	path := filepath.Join(e.dir, base+".pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.logger.Warn("pdf unavailable", zap.String("path", path), zap.Error(err))
		return "", false
	}
	e.logger.Info("wrote pdf", zap.String("path", path))
	return path, true
}
