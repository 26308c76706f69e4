package inventory

import "time"

// Product is the slice of a product row the engine reads and writes.
// Products are never created or destroyed by the engine.
type Product struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	RemainingQty int    `db:"remaining_qty" json:"remaining_qty"`
}

// SystemUserID addresses a notification to every user.
const SystemUserID int64 = 0

// Notification is an immutable message for a user (or SystemUserID).
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Message     string    `db:"message" json:"message"`
	ProductID   *int64    `db:"product_id" json:"product_id,omitempty"`
	ProductName *string   `db:"product_name" json:"product_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// StockUpdate sets a product's remaining quantity.
type StockUpdate struct {
	ProductID int64 `db:"id"`
	Qty       int   `db:"remaining_qty"`
}

// Batch is the unit of one scheduler commit: every update and every
// notification is applied together or not at all.
type Batch struct {
	Updates       []StockUpdate
	Notifications []Notification
}

// Empty reports whether the batch has nothing to write.
func (b Batch) Empty() bool {
	return len(b.Updates) == 0 && len(b.Notifications) == 0
}
