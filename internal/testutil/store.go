package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/migrations"
	"github.com/YuPatty/foodsaver/internal/store"
)

// NewStore migrates a database in t.TempDir(), opens it, seeds products and
// closes it when the test ends. Returns the store and its file path.
func NewStore(t testing.TB, products ...inventory.Product) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodsaver.db")
	require.NoError(t, migrations.Up(path), "migrate test database")

	s, err := store.Open(path)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })

	SeedProducts(t, s, products...)
	return s, path
}

// SeedProducts inserts products directly, bypassing the write gate.
func SeedProducts(t testing.TB, s *store.Store, products ...inventory.Product) {
	t.Helper()
	for _, p := range products {
		_, err := s.DB().NamedExec(
			`INSERT INTO products (id, name, remaining_qty) VALUES (:id, :name, :remaining_qty)`, p)
		require.NoError(t, err, "seed product %d", p.ID)
	}
}

// Stock returns the committed quantity of one product.
func Stock(t testing.TB, s *store.Store, id int64) int {
	t.Helper()
	qty, err := s.ReadStock(context.Background(), id)
	require.NoError(t, err)
	return qty
}
