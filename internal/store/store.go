package store

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/YuPatty/foodsaver/internal/writegate"
)

const (
	// DefaultBusyTimeout is how long SQLite waits on a locked database.
	DefaultBusyTimeout = 5 * time.Second

	// DefaultMaxOpenConns bounds the pool. WAL allows concurrent readers,
	// the gate keeps writers to one at a time.
	DefaultMaxOpenConns = 4
)

// Store provides access to the inventory database.
type Store struct {
	db   *sqlx.DB
	gate *writegate.Gate
}

type options struct {
	gate         *writegate.Gate
	busyTimeout  time.Duration
	maxOpenConns int
}

// Option configures Open.
type Option func(*options)

// WithGate shares a process-wide write gate with the store.
// Without it the store creates a private gate, which only serializes the
// store's own writers.
func WithGate(g *writegate.Gate) Option {
	return func(o *options) {
		o.gate = g
	}
}

// WithBusyTimeout overrides the SQLite busy_timeout (default 5s).
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.busyTimeout = d
	}
}

// WithMaxOpenConns overrides the connection pool size (default 4).
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		o.maxOpenConns = n
	}
}

// Open opens an existing, migrated inventory database at path.
//
// The connection is configured with:
//   - WAL journal mode so reads proceed during a write
//   - NORMAL synchronous mode
//   - a busy timeout (default 5s) for lock contention
//   - foreign key enforcement
//   - BEGIN IMMEDIATE transactions so a writer takes the lock up front
//
// Open does not create tables. If the schema is absent it returns an error
// wrapping ErrSchemaMissing.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{
		busyTimeout:  DefaultBusyTimeout,
		maxOpenConns: DefaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.gate == nil {
		o.gate = writegate.New(o.busyTimeout)
	}

	db, err := sqlx.Open("sqlite3", dsn(path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetMaxIdleConns(o.maxOpenConns)

	if err := verifySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, gate: o.gate}, nil
}

// dsn builds a go-sqlite3 connection string. Pragmas passed in the DSN are
// applied to every pooled connection, not just the first one.
func dsn(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Set("mode", "rw")
	q.Set("_busy_timeout", fmt.Sprintf("%d", busyTimeout.Milliseconds()))
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_foreign_keys", "on")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// verifySchema checks that the tables and columns the engine relies on exist.
func verifySchema(db *sqlx.DB) error {
	probes := []string{
		`SELECT id, name, remaining_qty FROM products LIMIT 0`,
		`SELECT id, user_id, message, product_id, product_name, created_at FROM notifications LIMIT 0`,
	}
	for _, q := range probes {
		rows, err := db.Query(q)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		rows.Close()
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying handle for direct queries.
// Use with caution - writes issued here bypass the gate.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Gate returns the write gate the store serializes on.
func (s *Store) Gate() *writegate.Gate {
	return s.gate
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.Get(&value, fmt.Sprintf("PRAGMA %s", name)); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
