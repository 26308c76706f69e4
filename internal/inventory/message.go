package inventory

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// LowStockMessage renders the broadcast text for a safety-stock crossing.
// Product names are NFC-normalized so identical names compare equal in the
// notifications table regardless of how they were imported.
func LowStockMessage(name string, safetyStock, remaining int) string {
	return fmt.Sprintf("Low stock: %q is at or below safety stock (%d), %d left.",
		norm.NFC.String(name), safetyStock, remaining)
}

// NormalizeName returns the NFC form of a product name.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
