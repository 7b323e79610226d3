package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"basegraph.app/assist/core/db"
)

// querier is the subset of pgxpool.Pool and pgx.Tx the stores use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Stores struct {
	q querier
}

func NewStores(database *db.DB) *Stores {
	return &Stores{q: database.Pool()}
}

func (s *Stores) Invocations() InvocationStore {
	return newInvocationStore(s.q)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS assistant_invocations (
		id                BIGINT PRIMARY KEY,
		feature           TEXT NOT NULL,
		model             TEXT NOT NULL,
		source            TEXT NOT NULL,
		fallback_reason   TEXT,
		input_text        TEXT NOT NULL,
		output_json       JSONB NOT NULL,
		attempts          INTEGER NOT NULL,
		latency_ms        BIGINT NOT NULL,
		prompt_tokens     INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS assistant_invocations_feature_created_at_idx
		ON assistant_invocations (feature, created_at DESC)`,
}

// EnsureSchema creates the history tables if they are missing.
func EnsureSchema(ctx context.Context, database *db.DB) error {
	return database.WithTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
		}
		return nil
	})
}
