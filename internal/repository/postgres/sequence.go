package postgres

import (
	"context"
	"fmt"
)

// Next bumps the named counter with a single statement, so concurrent
// callers always receive distinct values.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO id_sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = id_sequences.value + 1
		RETURNING value
	`
	var value int64
	if err := r.db.GetContext(ctx, &value, query, name); err != nil {
		return 0, fmt.Errorf("failed to allocate %s sequence: %w", name, err)
	}
	return value, nil
}
