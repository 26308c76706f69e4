package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_SchemaMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE unrelated (x INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMissing), "got %v", err)
}

func TestOpen_DoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	_, err := Open(path)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestClose_Nil(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

func TestDSN(t *testing.T) {
	got := dsn("/data/inv.db", DefaultBusyTimeout)
	assert.Contains(t, got, "file:/data/inv.db?")
	assert.Contains(t, got, "_busy_timeout=5000")
	assert.Contains(t, got, "_journal_mode=WAL")
	assert.Contains(t, got, "_txlock=immediate")
	assert.Contains(t, got, "mode=rw")
}

func TestPing(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
