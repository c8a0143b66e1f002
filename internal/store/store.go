// Package store is the PostgreSQL persistence layer. All reads and writes
// go through a pgx connection pool; JSON-shaped columns (rule sets,
// validation reports) round-trip through jsonb.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps a pgx pool with the service's queries.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS folders (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	parent_id  UUID REFERENCES folders(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id           UUID PRIMARY KEY,
	filename     TEXT NOT NULL,
	folder_id    UUID REFERENCES folders(id) ON DELETE CASCADE,
	content_hash TEXT NOT NULL,
	storage_key  TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS standards (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS standard_versions (
	id             UUID PRIMARY KEY,
	standard_id    UUID NOT NULL REFERENCES standards(id) ON DELETE CASCADE,
	version_number INT NOT NULL,
	rules_json     JSONB NOT NULL,
	is_active      BOOLEAN NOT NULL DEFAULT false,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (standard_id, version_number)
);

CREATE TABLE IF NOT EXISTS standard_assignments (
	target_id           UUID NOT NULL,
	target_type         TEXT NOT NULL,
	standard_version_id UUID NOT NULL REFERENCES standard_versions(id) ON DELETE CASCADE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (target_id, target_type)
);

CREATE TABLE IF NOT EXISTS validation_results (
	id                  UUID PRIMARY KEY,
	document_id         UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	standard_version_id UUID NOT NULL REFERENCES standard_versions(id) ON DELETE CASCADE,
	status              TEXT NOT NULL,
	report              JSONB NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS validation_results_document_idx
	ON validation_results (document_id, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_log (
	id         UUID PRIMARY KEY,
	actor_id   TEXT NOT NULL,
	action     TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	details    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
