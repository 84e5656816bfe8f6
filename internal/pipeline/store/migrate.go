// internal/pipeline/store/migrate.go
package store

import (
	"context"
	"database/sql"
)

// Migrate creates the schema the pipeline needs. The history table carries a
// sequence column so ListFor can replay transitions in commit order even when
// two commits land within the same timestamp tick.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS companies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	company_id TEXT REFERENCES companies(id),
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'open',
	created_by TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS candidates (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT
);

CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES jobs(id),
	candidate_id TEXT NOT NULL REFERENCES candidates(id),
	stage TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (job_id, candidate_id)
);

CREATE TABLE IF NOT EXISTS application_history (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	application_id TEXT NOT NULL REFERENCES applications(id),
	from_stage TEXT NOT NULL,
	to_stage TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	changed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_application_history_application
	ON application_history (application_id, seq);
`)
	return err
}
