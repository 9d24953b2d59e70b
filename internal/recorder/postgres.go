package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS generations (
	id BIGSERIAL PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	job_title TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	original_resume TEXT NOT NULL,
	job_description TEXT NOT NULL,
	jd_analysis JSONB,
	initial_critique JSONB,
	suggestions JSONB,
	final_resume TEXT NOT NULL,
	final_critique JSONB,
	iterations INTEGER NOT NULL DEFAULT 0,
	final_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	markdown_path TEXT NOT NULL DEFAULT '',
	pdf_path TEXT NOT NULL DEFAULT '',
	metadata JSONB
)`

const postgresColumns = `id, timestamp, job_title, company, original_resume, job_description,
	COALESCE(jd_analysis::text, ''), COALESCE(initial_critique::text, ''),
	COALESCE(suggestions::text, ''), final_resume, COALESCE(final_critique::text, ''),
	iterations, final_score, markdown_path, pdf_path, COALESCE(metadata::text, '')`

// PostgresStore keeps records in PostgreSQL. The pool serializes nothing itself;
// every statement is a single atomic insert or delete.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &Error{Op: "open", Cause: fmt.Errorf("failed to connect to database: %w", err)}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &Error{Op: "open", Cause: fmt.Errorf("failed to ping database: %w", err)}
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, &Error{Op: "create schema", Cause: err}
	}
	return &PostgresStore{pool: pool}, nil
}

// Insert stores rec and sets its ID.
func (s *PostgresStore) Insert(ctx context.Context, rec *GenerationRecord) (int64, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO generations (
			timestamp, job_title, company, original_resume, job_description,
			jd_analysis, initial_critique, suggestions, final_resume, final_critique,
			iterations, final_score, markdown_path, pdf_path, metadata
		) VALUES (COALESCE($1::timestamptz, NOW()), $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb, $9,
			$10::jsonb, $11, $12, $13, $14, $15::jsonb)
		RETURNING id, timestamp`,
		nullTime(rec), rec.JobTitle, rec.Company, rec.OriginalResume, rec.JobDescription,
		nullJSON(rec.Requirements), nullJSON(rec.InitialCritique), nullJSON(rec.Suggestions),
		rec.FinalResume, nullJSON(rec.FinalCritique), rec.Iterations, rec.FinalScore,
		rec.MarkdownPath, rec.PDFPath, nullJSON(rec.Metadata),
	).Scan(&rec.ID, &rec.Timestamp)
	if err != nil {
		return 0, &Error{Op: "insert", Cause: err}
	}
	return rec.ID, nil
}

// ListAll returns every record, newest first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]GenerationRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresColumns+` FROM generations ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, &Error{Op: "list", Cause: err}
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		rec, err := scanPostgres(rows)
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
func (s *PostgresStore) Get(ctx context.Context, id int64) (*GenerationRecord, error) {
	rec, err := scanPostgres(s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM generations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "get", Cause: err}
	}
	return rec, nil
}

// Delete removes the record with id.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1`, id)
	if err != nil {
		return &Error{Op: "delete", Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func scanPostgres(row pgx.Row) (*GenerationRecord, error) {
	var rec GenerationRecord
	err := row.Scan(&rec.ID, &rec.Timestamp, &rec.JobTitle, &rec.Company, &rec.OriginalResume,
		&rec.JobDescription, &rec.Requirements, &rec.InitialCritique, &rec.Suggestions,
		&rec.FinalResume, &rec.FinalCritique, &rec.Iterations, &rec.FinalScore,
		&rec.MarkdownPath, &rec.PDFPath, &rec.Metadata)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func nullTime(rec *GenerationRecord) any {
	if rec.Timestamp.IsZero() {
		return nil
	}
	return rec.Timestamp
}

func nullJSON(text string) any {
	if text == "" {
		return nil
	}
	return text
}
