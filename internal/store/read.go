package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/YuPatty/foodsaver/internal/inventory"
)

// DefaultNotificationLimit is the page size of ListNotifications when the
// caller passes a non-positive limit.
const DefaultNotificationLimit = 50

// ReadProducts returns every product ordered by id.
//
// Returns an empty slice (not nil) when the table is empty.
func (s *Store) ReadProducts(ctx context.Context) ([]inventory.Product, error) {
	products := []inventory.Product{}
	err := s.db.SelectContext(ctx, &products, `
		SELECT id, name, remaining_qty
		FROM products
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return products, nil
}

// ReadProduct returns one product or an error wrapping ErrProductNotFound.
func (s *Store) ReadProduct(ctx context.Context, id int64) (inventory.Product, error) {
	var p inventory.Product
	err := s.db.GetContext(ctx, &p, `
		SELECT id, name, remaining_qty
		FROM products
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Product{}, fmt.Errorf("read product %d: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return inventory.Product{}, fmt.Errorf("read product %d: %w", id, err)
	}
	return p, nil
}

// ReadStock returns the remaining quantity of one product.
func (s *Store) ReadStock(ctx context.Context, id int64) (int, error) {
	var qty int
	err := s.db.GetContext(ctx, &qty, `SELECT remaining_qty FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read stock %d: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("read stock %d: %w", id, err)
	}
	return qty, nil
}

// ListNotifications returns the newest notifications addressed to userID.
// Ties on created_at are broken by id so the order is stable.
func (s *Store) ListNotifications(ctx context.Context, userID int64, limit int) ([]inventory.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	notifications := []inventory.Notification{}
	err := s.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, message, product_id, product_name, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
