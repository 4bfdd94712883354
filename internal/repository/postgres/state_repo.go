package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StateRepository keeps the latest contract-state snapshot in a single row,
// replaced on every applied transition. It exists for restart recovery; the
// in-memory state is authoritative while the process runs.
type StateRepository struct {
	pool *pgxpool.Pool
}

func NewStateRepository(pool *pgxpool.Pool) *StateRepository {
	return &StateRepository{pool: pool}
}

func (r *StateRepository) Save(ctx context.Context, snapshot []byte) error {
	q := `
INSERT INTO contract_state (id, snapshot, updated_at)
VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, snapshot)
	return err
}

// Load returns nil with no error when no snapshot has been written yet.
func (r *StateRepository) Load(ctx context.Context) ([]byte, error) {
	var snapshot []byte
	err := r.pool.QueryRow(ctx, `SELECT snapshot FROM contract_state WHERE id = 1`).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
