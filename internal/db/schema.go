package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is idempotent; it runs on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                  BIGSERIAL PRIMARY KEY,
	email               TEXT        NOT NULL UNIQUE,
	name                TEXT        NOT NULL,
	password_hash       TEXT        NOT NULL DEFAULT '',
	roles               TEXT[]      NOT NULL DEFAULT '{}',
	wallet_address      TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	total_score         INTEGER     NOT NULL DEFAULT 0,
	dumps_reported      INTEGER     NOT NULL DEFAULT 0,
	spots_adopted       INTEGER     NOT NULL DEFAULT 0,
	marketplace_sales   INTEGER     NOT NULL DEFAULT 0,
	cleanup_sessions    INTEGER     NOT NULL DEFAULT 0,
	cycle_tokens_earned INTEGER     NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_users_total_score ON users (total_score DESC, id ASC);

CREATE TABLE IF NOT EXISTS dump_reports (
	id          BIGSERIAL PRIMARY KEY,
	user_id     BIGINT           NOT NULL,
	photo_url   TEXT             NOT NULL DEFAULT '',
	report_type TEXT             NOT NULL DEFAULT '',
	description TEXT             NOT NULL DEFAULT '',
	location    TEXT             NOT NULL DEFAULT '',
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables the stores rely on if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
