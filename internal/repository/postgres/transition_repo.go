package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opdev7/LendTez/internal/host"
)

// TransitionRepository is the append-only journal of applied transitions —
// the contract's only observability surface.
type TransitionRepository struct {
	pool *pgxpool.Pool
}

func NewTransitionRepository(pool *pgxpool.Pool) *TransitionRepository {
	return &TransitionRepository{pool: pool}
}

func (r *TransitionRepository) Append(ctx context.Context, rec host.Transition) error {
	q := `
INSERT INTO contract_transitions (id, kind, payload, payload_hash, applied_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.pool.Exec(ctx, q, rec.ID, rec.Kind, rec.Payload, rec.Hash, rec.AppliedAt)
	return err
}

func (r *TransitionRepository) List(ctx context.Context, limit int32) ([]host.Transition, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT id, kind, payload, payload_hash, applied_at
FROM contract_transitions
ORDER BY applied_at DESC, id
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []host.Transition{}
	for rows.Next() {
		var rec host.Transition
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Payload, &rec.Hash, &rec.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
