package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Column names of the embedded document store. The schema is deliberately
// small: a document is a domain record with its registrar and free text.
const (
	colDomain    = "domain"
	colRegistrar = "registrar"
	colText      = "text"
)

// SQLite is an embedded search backend built on an FTS5 full-text index.
// It is the default backend: no external service is needed, and the whole
// corpus lives in a single database file (or in memory for tests).
type SQLite struct {
	db          *sql.DB
	uniqueField string
}

// NewSQLite opens (or creates) the document index at dsn. uniqueField names
// the column duplicate hits are collapsed on when a query asks for unique
// results; empty defaults to the domain column.
func NewSQLite(dsn, uniqueField string) (*SQLite, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "docsift.db"
	}
	if uniqueField == "" {
		uniqueField = colDomain
	}
	if uniqueField != colDomain && uniqueField != colRegistrar {
		return nil, fmt.Errorf("unknown unique field %q", uniqueField)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite index: %w", err)
	}
	s := &SQLite{db: db, uniqueField: uniqueField}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("ping sqlite index: %w", err)
	}
	ddl := `CREATE VIRTUAL TABLE IF NOT EXISTS documents USING fts5(domain, registrar, text);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize document schema: %w", err)
	}
	return nil
}

// Name returns the backend identifier used in config.
func (s *SQLite) Name() string { return "sqlite" }

// Index adds documents to the full-text index. Unknown fields are ignored;
// missing fields are stored empty.
func (s *SQLite) Index(ctx context.Context, docs ...Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index transaction: %w", err)
	}
	for _, doc := range docs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (domain, registrar, text) VALUES (?, ?, ?)`,
			str(doc[colDomain]), str(doc[colRegistrar]), str(doc[colText]),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("index document: %w", err)
		}
	}
	return tx.Commit()
}

// Search runs a full-text query over the index and returns the requested
// window of hits plus the total match count.
func (s *SQLite) Search(ctx context.Context, q Query) (*Result, error) {
	countSQL := `SELECT count(*) FROM documents WHERE documents MATCH ?`
	pageSQL := `SELECT domain, registrar, text FROM documents WHERE documents MATCH ? ORDER BY rank LIMIT ? OFFSET ?`
	if q.Unique {
		countSQL = fmt.Sprintf(`SELECT count(DISTINCT %s) FROM documents WHERE documents MATCH ?`, s.uniqueField)
		pageSQL = fmt.Sprintf(`SELECT domain, registrar, text FROM documents WHERE documents MATCH ? GROUP BY %s ORDER BY %s LIMIT ? OFFSET ?`, s.uniqueField, s.uniqueField)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, q.Text).Scan(&total); err != nil {
		return nil, s.classify(err)
	}

	rows, err := s.db.QueryContext(ctx, pageSQL, q.Text, q.Size, q.Skip)
	if err != nil {
		return nil, s.classify(err)
	}
	defer rows.Close()

	items := make([]Document, 0, q.Size)
	for rows.Next() {
		var domain, registrar, text string
		if err := rows.Scan(&domain, &registrar, &text); err != nil {
			return nil, &ConnectionError{Err: err}
		}
		items = append(items, Document{
			colDomain:    domain,
			colRegistrar: registrar,
			colText:      text,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &ConnectionError{Err: err}
	}
	return &Result{Total: total, Items: items}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// classify maps driver errors onto the backend error taxonomy. FTS5 reports
// bad query syntax in the error text; everything else is treated as an
// infrastructure failure.
func (s *SQLite) classify(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "syntax error") || strings.Contains(msg, "malformed MATCH") || strings.Contains(msg, "fts5") {
		return &QueryError{Err: err}
	}
	return &ConnectionError{Err: err}
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
