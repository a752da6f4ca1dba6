// Package sqlite provides the SQLite implementation of the record store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One row per URL is kept in the papers table; the URL
// primary key is the uniqueness backstop behind the existence check done by
// the ingestion pipeline.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files named NNN_description.
//
// # Data Location
//
// The database file is named explicitly by configuration (store.path).
// Store.Close checkpoints the write-ahead log so the store is a single file
// whenever no process has it open.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Readers see a record either
// before or after an insert, never partially, through SQLite's WAL mode.
package sqlite
