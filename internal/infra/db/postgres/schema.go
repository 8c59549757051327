package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS posters (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    wallet_address TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS agents (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    temp_wallet_address TEXT,
    temp_wallet_secret  TEXT,
    status              TEXT NOT NULL DEFAULT 'active',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS jobs (
    id          TEXT PRIMARY KEY,
    poster_id   TEXT NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    budget_usdc DOUBLE PRECISION NOT NULL,
    status      TEXT NOT NULL DEFAULT 'open',
    agent_id    TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS escrow (
    id          TEXT PRIMARY KEY,
    job_id      TEXT NOT NULL,
    from_wallet TEXT NOT NULL,
    amount_usdc DOUBLE PRECISION NOT NULL,
    status      TEXT NOT NULL DEFAULT 'funded',
    tx_ref      TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS progress_updates (
    id         TEXT PRIMARY KEY,
    job_id     TEXT NOT NULL,
    agent_id   TEXT NOT NULL,
    type       TEXT NOT NULL,
    content    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deliverables (
    id         TEXT PRIMARY KEY,
    job_id     TEXT NOT NULL,
    agent_id   TEXT NOT NULL,
    files      TEXT NOT NULL DEFAULT '[]',
    summary    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS job_instructions (
    id         TEXT PRIMARY KEY,
    job_id     TEXT NOT NULL,
    content    TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);
CREATE INDEX IF NOT EXISTS idx_updates_job ON progress_updates (job_id);
CREATE INDEX IF NOT EXISTS idx_instructions_job ON job_instructions (job_id, status);
`

// Migrate bootstraps the schema. Idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
