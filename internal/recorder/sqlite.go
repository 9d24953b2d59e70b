package recorder

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS generations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	job_title TEXT,
	company TEXT,
	original_resume TEXT NOT NULL,
	job_description TEXT NOT NULL,
	jd_analysis TEXT,
	initial_critique TEXT,
	suggestions TEXT,
	final_resume TEXT NOT NULL,
	final_critique TEXT,
	iterations INTEGER,
	final_score REAL,
	markdown_path TEXT,
	pdf_path TEXT,
	metadata TEXT
)`

const selectColumns = `id, timestamp, job_title, company, original_resume, job_description,
	jd_analysis, initial_critique, suggestions, final_resume, final_critique,
	iterations, final_score, markdown_path, pdf_path, metadata`

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &Error{Op: "open", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &Error{Op: "open", Cause: err}
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, &Error{Op: "create schema", Cause: err}
	}
	return &SQLiteStore{db: db}, nil
}

// Insert stores rec and sets its ID.
func (s *SQLiteStore) Insert(ctx context.Context, rec *GenerationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (
			timestamp, job_title, company, original_resume, job_description,
			jd_analysis, initial_critique, suggestions, final_resume, final_critique,
			iterations, final_score, markdown_path, pdf_path, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format(sqliteTimeLayout), rec.JobTitle, rec.Company,
		rec.OriginalResume, rec.JobDescription, rec.Requirements, rec.InitialCritique,
		rec.Suggestions, rec.FinalResume, rec.FinalCritique, rec.Iterations, rec.FinalScore,
		rec.MarkdownPath, rec.PDFPath, rec.Metadata,
	)
	if err != nil {
		return 0, &Error{Op: "insert", Cause: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &Error{Op: "insert", Cause: err}
	}
	rec.ID = id
	return id, nil
}

// ListAll returns every record, newest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]GenerationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM generations ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, &Error{Op: "list", Cause: err}
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		rec, err := scanSQLite(rows)
		if err != nil {
			return nil, &Error{Op: "list", Cause: err}
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list", Cause: err}
	}
	return out, nil
}

// Get returns the record with id, or nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*GenerationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM generations WHERE id = ?`, id)
	rec, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "get", Cause: err}
	}
	return rec, nil
}

// Delete removes the record with id.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return &Error{Op: "delete", Cause: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*GenerationRecord, error) {
	var (
		rec        GenerationRecord
		ts         string
		iterations sql.NullInt64
		score      sql.NullFloat64
	)
	var jobTitle, company, requirements, initial, suggestions sql.NullString
	var finalCritique, markdown, pdf, metadata sql.NullString
	err := row.Scan(&rec.ID, &ts, &jobTitle, &company, &rec.OriginalResume, &rec.JobDescription,
		&requirements, &initial, &suggestions, &rec.FinalResume, &finalCritique,
		&iterations, &score, &markdown, &pdf, &metadata)
	if err != nil {
		return nil, err
	}

	rec.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
	if err != nil {
		// Rows written by other tools may use RFC 3339
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, err
		}
	}
	rec.JobTitle = jobTitle.String
	rec.Company = company.String
	rec.Requirements = requirements.String
	rec.InitialCritique = initial.String
	rec.Suggestions = suggestions.String
	rec.FinalCritique = finalCritique.String
	rec.Iterations = int(iterations.Int64)
	rec.FinalScore = score.Float64
	rec.MarkdownPath = markdown.String
	rec.PDFPath = pdf.String
	rec.Metadata = metadata.String
	return &rec, nil
}
