package store

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when a product id has no row.
	ErrProductNotFound = errors.New("product not found")

	// ErrSchemaMissing is returned by Open when the database has not been
	// migrated (run `foodsaver migrate up`).
	ErrSchemaMissing = errors.New("inventory schema missing")
)

// Statement names reported by BatchError.
const (
	StmtUpdateStock        = "update_stock"
	StmtInsertNotification = "insert_notification"
	StmtTransaction        = "transaction"
)

// BatchError reports the statement that made ApplyBatch roll back.
//
// ProductID is the product the failing statement touched, or 0 when the
// failure was not tied to one product (begin/commit).
type BatchError struct {
	Statement string
	ProductID int64
	Err       error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.ProductID != 0 {
		return fmt.Sprintf("apply batch: %s (product=%d): %v", e.Statement, e.ProductID, e.Err)
	}
	return fmt.Sprintf("apply batch: %s: %v", e.Statement, e.Err)
}

// Unwrap returns the underlying database error.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the product does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
