// Package store is the SQLite adapter for the shared inventory database.
//
// The database file is shared with the web application: it owns the
// products and notifications tables (schema in internal/migrations), this
// package only reads and mutates rows. SQLite runs in WAL mode so readers
// never block on the writer; all writes go through a writegate.Gate so the
// stock scheduler and foreground writers commit one at a time.
//
// Reads (ReadProducts, ReadProduct, ReadStock, ListNotifications) take no
// lock. Writes (ApplyBatch, InsertNotification, ConsumeStock) each run
// exactly one transaction while holding the gate.
package store
