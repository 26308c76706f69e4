package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// txClosure runs fn inside one transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func txClosure[T any](ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	res, err := fn(ctx, tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	return res, nil
}

// withWriteTx runs fn as one transaction while holding the write gate.
func withWriteTx[T any](ctx context.Context, s *Store, fn func(ctx context.Context, tx *sqlx.Tx) (T, error)) (T, error) {
	var res T
	err := s.gate.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = txClosure(ctx, s.db, fn)
		return err
	})
	return res, err
}
