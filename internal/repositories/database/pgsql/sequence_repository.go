package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/neuron_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepository {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextSequenceValue atomically increments the counter for (series, period).
// The row lock taken by the upsert serializes concurrent callers.
func (r *PgxSequenceRepository) NextSequenceValue(ctx context.Context, series string, period string) (int64, error) {
	var value int64
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO document_sequences (series, period, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (series, period) DO UPDATE
		SET last_value = document_sequences.last_value + 1
		RETURNING last_value;`,
		series, period,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s/%s: %w", series, period, err)
	}
	return value, nil
}
