// Package sqlite provides the SQLite-backed manifest ledger.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The ledger records one stamp per written manifest (path,
// key, row count, SHA-256 digest, run ID) so later runs can tell an intact
// cached manifest from one that was edited or truncated.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; applied
// versions are recorded in schema_migrations.
//
// # Data Location
//
// Preparation keeps the database beside the cached manifests
// (<manifest dir>/ledger.db). The CLI's manifests commands open the same file.
package sqlite
