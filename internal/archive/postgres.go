// Package archive mirrors accepted papers into Postgres. The JSON checkpoint
// remains the canonical output; the archive is a queryable secondary copy.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for paper rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Store writes accepted paper rows into Postgres. Expected schema:
//
//	CREATE TABLE papers (
//		paper_id         TEXT PRIMARY KEY,
//		url              TEXT NOT NULL,
//		title            TEXT,
//		authors          JSONB,
//		abstract         TEXT,
//		pdf_url          TEXT,
//		publication_date TEXT,
//		doi              TEXT,
//		extracted_at     TIMESTAMPTZ NOT NULL
//	);
type Store struct {
	pool  execCloser
	table string
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("archive.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "papers"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewStoreWithPool constructs a Store from an existing pool (primarily for
// testing with pgxmock).
func NewStoreWithPool(pool execCloser, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "papers"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// SavePaper upserts one accepted paper. Re-running a scan over the same
// range must not produce duplicate rows.
func (s *Store) SavePaper(ctx context.Context, p scraper.Paper) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("archive store is not configured")
	}
	if p.ID <= 0 {
		return fmt.Errorf("paper id is required")
	}
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors: %w", err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	paper_id,
	url,
	title,
	authors,
	abstract,
	pdf_url,
	publication_date,
	doi,
	extracted_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9
)
ON CONFLICT (paper_id) DO NOTHING`, s.table)

	args := []any{
		p.Number(),
		p.URL,
		p.Title,
		authorsJSON,
		p.Abstract,
		p.PDFURL,
		p.PublicationDate,
		p.DOI,
		p.ExtractedAt,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert paper: %w", err)
	}
	return nil
}
