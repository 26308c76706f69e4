package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

const insertNotificationSQL = `
	INSERT INTO notifications (user_id, message, product_id, product_name)
	VALUES (:user_id, :message, :product_id, :product_name)
`

// ApplyBatch commits every stock update and notification in b as one
// transaction, in order, while holding the write gate.
//
// Either all rows land or none do. A failing statement is reported as a
// *BatchError naming the statement and product. Updates for products that
// were deleted since the snapshot affect zero rows and are not errors.
// An empty batch is a no-op and does not take the gate.
func (s *Store) ApplyBatch(ctx context.Context, b inventory.Batch) error {
	if b.Empty() {
		return nil
	}

	_, err := withWriteTx(ctx, s, func(ctx context.Context, tx *sqlx.Tx) (struct{}, error) {
		for _, u := range b.Updates {
			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET remaining_qty = ? WHERE id = ?`,
				u.Qty, u.ProductID,
			); err != nil {
				return struct{}{}, &BatchError{Statement: StmtUpdateStock, ProductID: u.ProductID, Err: err}
			}
		}

		for _, n := range b.Notifications {
			if _, err := tx.NamedExecContext(ctx, insertNotificationSQL, n); err != nil {
				var pid int64
				if n.ProductID != nil {
					pid = *n.ProductID
				}
				return struct{}{}, &BatchError{Statement: StmtInsertNotification, ProductID: pid, Err: err}
			}
		}
		return struct{}{}, nil
	})
	if err == nil {
		return nil
	}

	var be *BatchError
	if errors.As(err, &be) {
		return be
	}
	return &BatchError{Statement: StmtTransaction, Err: err}
}

// InsertNotification stores one notification through the write gate and
// returns its id. Used by foreground flows (favorite price drops, hotspot
// alerts) that share the database with the scheduler.
func (s *Store) InsertNotification(ctx context.Context, n inventory.Notification) (int64, error) {
	if n.Message == "" {
		return 0, errors.New("insert notification: empty message")
	}

	id, err := withWriteTx(ctx, s, func(ctx context.Context, tx *sqlx.Tx) (int64, error) {
		res, err := tx.NamedExecContext(ctx, insertNotificationSQL, n)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	})
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// ConsumeStock removes qty units of a product (an order placed through the
// web application) and returns the new quantity. Stock never goes below 0.
func (s *Store) ConsumeStock(ctx context.Context, id int64, qty int) (int, error) {
	if qty < 0 {
		return 0, fmt.Errorf("consume stock %d: negative quantity %d", id, qty)
	}

	remaining, err := withWriteTx(ctx, s, func(ctx context.Context, tx *sqlx.Tx) (int, error) {
		var remaining int
		err := tx.GetContext(ctx, &remaining, `
			UPDATE products
			SET remaining_qty = MAX(remaining_qty - ?, 0)
			WHERE id = ?
			RETURNING remaining_qty
		`, qty, id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return remaining, err
	})
	if err != nil {
		return 0, fmt.Errorf("consume stock %d: %w", id, err)
	}
	return remaining, nil
}
