// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Vectors live in index_entries as packed BLOBs; the
// collection dimension is recorded in collection_meta. Changing the dimension
// drops and recreates index_entries.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/vectors.db
//
// # Thread Safety
//
// All operations are thread-safe. Inserts accumulate in one write transaction
// until Commit; searches run on other connections and, in WAL mode, see only
// committed rows.
package sqlite
