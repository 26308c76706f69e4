package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuPatty/foodsaver/internal/inventory"
	"github.com/YuPatty/foodsaver/internal/migrations"
)

// createTestStore migrates a fresh database file and opens it.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, migrations.Up(path))

	s, err := Open(path, opts...)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// seedProducts inserts products directly, bypassing the gate.
func seedProducts(t *testing.T, s *Store, products ...inventory.Product) {
	t.Helper()
	for _, p := range products {
		_, err := s.DB().NamedExec(
			`INSERT INTO products (id, name, remaining_qty) VALUES (:id, :name, :remaining_qty)`, p)
		require.NoError(t, err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
