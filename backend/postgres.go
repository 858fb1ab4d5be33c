package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Postgres is a search backend over a shared PostgreSQL document store,
// using a precomputed tsvector column for full-text matching. Use it when
// several gateway instances must search the same corpus.
type Postgres struct {
	db          *sql.DB
	uniqueField string
}

// NewPostgres connects to the document store at dsn. See NewSQLite for the
// meaning of uniqueField.
func NewPostgres(dsn, uniqueField string) (*Postgres, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	if uniqueField == "" {
		uniqueField = colDomain
	}
	if uniqueField != colDomain && uniqueField != colRegistrar {
		return nil, fmt.Errorf("unknown unique field %q", uniqueField)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres document store: %w", err)
	}
	p := &Postgres{db: db, uniqueField: uniqueField}
	if err := p.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) init() error {
	if err := p.db.Ping(); err != nil {
		return fmt.Errorf("ping postgres document store: %w", err)
	}
	ddl := `
CREATE TABLE IF NOT EXISTS documents (
	id BIGSERIAL PRIMARY KEY,
	domain TEXT NOT NULL,
	registrar TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	tsv tsvector GENERATED ALWAYS AS (to_tsvector('english', domain || ' ' || registrar || ' ' || text)) STORED
);
CREATE INDEX IF NOT EXISTS documents_tsv_idx ON documents USING GIN (tsv);`
	if _, err := p.db.Exec(ddl); err != nil {
		return fmt.Errorf("initialize document schema: %w", err)
	}
	return nil
}

// Name returns the backend identifier used in config.
func (p *Postgres) Name() string { return "postgres" }

// Index adds documents to the store.
func (p *Postgres) Index(ctx context.Context, docs ...Document) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin index transaction: %w", err)
	}
	for _, doc := range docs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (domain, registrar, text) VALUES ($1, $2, $3)`,
			str(doc[colDomain]), str(doc[colRegistrar]), str(doc[colText]),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("index document: %w", err)
		}
	}
	return tx.Commit()
}

// Search runs a full-text query over the store and returns the requested
// window of hits plus the total match count.
func (p *Postgres) Search(ctx context.Context, q Query) (*Result, error) {
	countSQL := `SELECT count(*) FROM documents WHERE tsv @@ websearch_to_tsquery('english', $1)`
	pageSQL := `SELECT domain, registrar, text FROM documents WHERE tsv @@ websearch_to_tsquery('english', $1) ORDER BY ts_rank(tsv, websearch_to_tsquery('english', $1)) DESC, id LIMIT $2 OFFSET $3`
	if q.Unique {
		countSQL = fmt.Sprintf(`SELECT count(DISTINCT %s) FROM documents WHERE tsv @@ websearch_to_tsquery('english', $1)`, p.uniqueField)
		pageSQL = fmt.Sprintf(`SELECT DISTINCT ON (%s) domain, registrar, text FROM documents WHERE tsv @@ websearch_to_tsquery('english', $1) ORDER BY %s, id LIMIT $2 OFFSET $3`, p.uniqueField, p.uniqueField)
	}

	var total int64
	if err := p.db.QueryRowContext(ctx, countSQL, q.Text).Scan(&total); err != nil {
		return nil, classifyPg(err)
	}

	rows, err := p.db.QueryContext(ctx, pageSQL, q.Text, q.Size, q.Skip)
	if err != nil {
		return nil, classifyPg(err)
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
func (p *Postgres) Close() error { return p.db.Close() }

// classifyPg maps driver errors onto the backend error taxonomy. A *pq.Error
// means the server was reached and rejected the statement, so the query is
// at fault; anything else (dial failure, dropped connection) is an
// infrastructure failure.
func classifyPg(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &QueryError{Err: err}
	}
	return &ConnectionError{Err: err}
}
