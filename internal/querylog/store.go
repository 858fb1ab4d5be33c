// Package querylog persists a record of every search the gateway serves,
// for operator auditing. Writes are best-effort: the server logs a warning
// on failure and keeps serving.
package querylog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Entry is one served search request.
type Entry struct {
	TraceID      string
	Query        string
	PageSize     int
	PageNumber   int
	Unique       bool
	Total        int64
	Status       string
	ErrorMessage string
	DurationMS   int64
	CreatedAt    time.Time
}

// Writer persists query log entries.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

// NoopWriter ignores all log writes.
type NoopWriter struct{}

func (NoopWriter) Write(_ context.Context, _ Entry) error { return nil }

// SQLWriter persists entries to SQLite/Postgres.
type SQLWriter struct {
	db      *sql.DB
	dialect string
}

// NewSQLiteWriter opens (or creates) a SQLite query log at dsn.
func NewSQLiteWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "docsift-queries.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite query log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "sqlite"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// NewPostgresWriter connects to a Postgres query log at dsn.
func NewPostgresWriter(dsn string) (*SQLWriter, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres query log writer: %w", err)
	}
	w := &SQLWriter{db: db, dialect: "postgres"}
	if err := w.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLWriter) init() error {
	if err := w.db.Ping(); err != nil {
		return fmt.Errorf("ping %s query log writer: %w", w.dialect, err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS query_logs (
	id INTEGER PRIMARY KEY,
	trace_id TEXT,
	query TEXT NOT NULL,
	page_size INTEGER NOT NULL,
	page_number INTEGER NOT NULL,
	unique_only INTEGER NOT NULL,
	total INTEGER NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	duration_ms INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

	if w.dialect == "postgres" {
		ddl = `
CREATE TABLE IF NOT EXISTS query_logs (
	id BIGSERIAL PRIMARY KEY,
	trace_id TEXT,
	query TEXT NOT NULL,
	page_size INTEGER NOT NULL,
	page_number INTEGER NOT NULL,
	unique_only BOOLEAN NOT NULL,
	total BIGINT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`
	}

	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize query log schema: %w", err)
	}
	return nil
}

// Write inserts one entry.
func (w *SQLWriter) Write(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	stmt := `INSERT INTO query_logs
	(trace_id, query, page_size, page_number, unique_only, total, status, error_message, duration_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if w.dialect == "postgres" {
		stmt = `INSERT INTO query_logs
	(trace_id, query, page_size, page_number, unique_only, total, status, error_message, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	}

	_, err := w.db.ExecContext(ctx, stmt,
		entry.TraceID, entry.Query, entry.PageSize, entry.PageNumber, entry.Unique,
		entry.Total, entry.Status, entry.ErrorMessage, entry.DurationMS, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("write query log entry: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (w *SQLWriter) Close() error { return w.db.Close() }
