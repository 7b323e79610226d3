package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"basegraph.app/assist/internal/model"
)

type invocationStore struct {
	q querier
}

func newInvocationStore(q querier) InvocationStore {
	return &invocationStore{q: q}
}

const invocationColumns = `id, feature, model, source, fallback_reason, input_text, output_json,
	attempts, latency_ms, prompt_tokens, completion_tokens, created_at`

func (s *invocationStore) Create(ctx context.Context, inv *model.Invocation) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO assistant_invocations (
			id, feature, model, source, fallback_reason, input_text, output_json,
			attempts, latency_ms, prompt_tokens, completion_tokens
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		inv.ID,
		inv.Feature,
		inv.Model,
		inv.Source,
		inv.FallbackReason,
		inv.InputText,
		inv.OutputJSON,
		int32(inv.Attempts),
		inv.LatencyMs,
		int32(inv.PromptTokens),
		int32(inv.CompletionTokens),
	).Scan(&inv.CreatedAt)
}

func (s *invocationStore) GetByID(ctx context.Context, id int64) (*model.Invocation, error) {
	row := s.q.QueryRow(ctx, `SELECT `+invocationColumns+` FROM assistant_invocations WHERE id = $1`, id)
	inv, err := scanInvocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *invocationStore) ListRecent(ctx context.Context, feature string, limit int32) ([]model.Invocation, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+invocationColumns+`
		FROM assistant_invocations
		WHERE $1 = '' OR feature = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, feature, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invocations := []model.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, *inv)
	}
	return invocations, rows.Err()
}

func scanInvocation(row pgx.Row) (*model.Invocation, error) {
	var inv model.Invocation
	var attempts, promptTokens, complTokens int32
	if err := row.Scan(
		&inv.ID,
		&inv.Feature,
		&inv.Model,
		&inv.Source,
		&inv.FallbackReason,
		&inv.InputText,
		&inv.OutputJSON,
		&attempts,
		&inv.LatencyMs,
		&promptTokens,
		&complTokens,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	inv.Attempts = int(attempts)
	inv.PromptTokens = int(promptTokens)
	inv.CompletionTokens = int(complTokens)
	return &inv, nil
}
