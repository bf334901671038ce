package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const createCountersTable = `CREATE TABLE IF NOT EXISTS receipt_counters (
	name       TEXT PRIMARY KEY,
	value      BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// CounterStore keeps named sequences in the receipt_counters table. The
// upsert in Next is a single statement, so concurrent callers serialize on
// the row lock and never see the same value.
type CounterStore struct {
	pool Pool
	name string
}

// NewCounterStore creates a counter bound to one row of receipt_counters.
func NewCounterStore(pool Pool, name string) *CounterStore {
	return &CounterStore{pool: pool, name: name}
}

// EnsureSchema creates the counters table if it does not exist.
func (s *CounterStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createCountersTable); err != nil {
		return fmt.Errorf("create receipt_counters: %w", err)
	}
	return nil
}

// Next increments the counter and returns the new value. A missing row
// starts at 1.
func (s *CounterStore) Next(ctx context.Context) (int64, error) {
	query := `INSERT INTO receipt_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = receipt_counters.value + 1, updated_at = now()
		RETURNING value`

	var n int64
	if err := s.pool.QueryRow(ctx, query, s.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", s.name, err)
	}
	return n, nil
}

// Current returns the last issued value, or 0 if none was issued yet.
func (s *CounterStore) Current(ctx context.Context) (int64, error) {
	query := `SELECT value FROM receipt_counters WHERE name = $1`

	var n int64
	err := s.pool.QueryRow(ctx, query, s.name).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read counter %s: %w", s.name, err)
	}
	return n, nil
}
