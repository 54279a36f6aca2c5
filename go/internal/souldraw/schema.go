package souldraw

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS souldraws (
    id               TEXT PRIMARY KEY,
    prize            TEXT NOT NULL,
    terms            TEXT NOT NULL,
    min_participants INTEGER,
    max_participants INTEGER,
    num_winners      INTEGER NOT NULL DEFAULT 1,
    participants     JSONB NOT NULL DEFAULT '[]',
    winners          JSONB,
    end_time         BIGINT NOT NULL,
    draw_mode        TEXT NOT NULL DEFAULT 'auto',
    confirmed        BOOLEAN NOT NULL DEFAULT FALSE,
    channel_id       TEXT,
    created_by       TEXT,
    created_at       BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_souldraws_ongoing
    ON souldraws (end_time)
    WHERE winners IS NULL AND draw_mode <> 'cancelled';
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS souldraws (
    id               TEXT PRIMARY KEY,
    prize            TEXT NOT NULL,
    terms            TEXT NOT NULL,
    min_participants INTEGER,
    max_participants INTEGER,
    num_winners      INTEGER NOT NULL DEFAULT 1,
    participants     TEXT NOT NULL DEFAULT '[]',
    winners          TEXT,
    end_time         INTEGER NOT NULL,
    draw_mode        TEXT NOT NULL DEFAULT 'auto',
    confirmed        INTEGER NOT NULL DEFAULT 0,
    channel_id       TEXT,
    created_by       TEXT,
    created_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_souldraws_ongoing
    ON souldraws (end_time)
    WHERE winners IS NULL AND draw_mode <> 'cancelled';
`

// SchemaSQL returns the DDL for the souldraws table in the given dialect.
func SchemaSQL(d sqlutil.Dialect) string {
	if d == sqlutil.Postgres {
		return postgresSchema
	}
	return sqliteSchema
}

// SchemaStatements splits the DDL into individually executable statements.
func SchemaStatements(d sqlutil.Dialect) []string {
	return splitStatements(SchemaSQL(d))
}

// Migrate applies the schema idempotently inside one transaction.
func Migrate(ctx context.Context, db *sql.DB, d sqlutil.Dialect) error {
	return sqlutil.Run(ctx, db, func(tx *sql.Tx) error {
		for _, stmt := range SchemaStatements(d) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

func splitStatements(schema string) []string {
	var out []string
	for _, s := range strings.Split(schema, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
