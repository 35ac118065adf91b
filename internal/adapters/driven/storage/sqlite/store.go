package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// dbFileName is the database file inside the data directory.
const dbFileName = "vectors.db"

const metaDimension = "dimension"

const createEntriesTable = `
	CREATE TABLE index_entries (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		text_hash TEXT NOT NULL,
		text      TEXT NOT NULL,
		vector    BLOB NOT NULL
	)`

const createEntriesIndex = `CREATE INDEX idx_index_entries_text_hash ON index_entries(text_hash)`

// VectorStore persists binary vectors in SQLite.
// Inserts are staged in an open transaction and become visible to searches
// only when Commit succeeds. WAL mode gives searches a consistent snapshot.
type VectorStore struct {
	db   *sql.DB
	path string

	mu        sync.Mutex
	tx        *sql.Tx
	dimension int
}

// NewVectorStore opens (or creates) the store in dataDir for vectors of dimension.
// If dataDir is empty, defaults to ~/.sercha-rag/data.
// An existing collection with a different dimension is dropped and recreated.
func NewVectorStore(ctx context.Context, dataDir string, dimension int) (*VectorStore, error) {
	if dimension <= 0 || dimension%8 != 0 {
		return nil, domain.ConfigurationError("vector dimension %d is not a positive multiple of 8", dimension)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-rag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, domain.StorageError("open database", err)
	}

	s := &VectorStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, domain.StorageError("run migrations", err)
	}

	if err := s.ensureDimension(ctx, dimension); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// migrate applies every embedded *.up.sql newer than the recorded version.
func (s *VectorStore) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index_entries.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("Applied migration %s", name)
	}

	return nil
}

// ensureDimension records dimension for a new collection, or recreates a
// collection built for a different one.
func (s *VectorStore) ensureDimension(ctx context.Context, dimension int) error {
	var stored string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM collection_meta WHERE key = ?", metaDimension).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO collection_meta (key, value) VALUES (?, ?)", metaDimension, strconv.Itoa(dimension)); err != nil {
			return domain.StorageError("record dimension", err)
		}
		s.dimension = dimension
		return nil
	case err != nil:
		return domain.StorageError("read dimension", err)
	}

	existing, err := strconv.Atoi(stored)
	if err == nil && existing == dimension {
		s.dimension = dimension
		return nil
	}

	logger.Warn("Vector store dimension changed (%s -> %d), dropping and recreating index", stored, dimension)
	return s.Reset(ctx, dimension)
}

// Insert stages entries in the pending transaction. If any row fails to
// write, the whole pending transaction is rolled back so nothing from the
// failed batch can reach a later Commit.
func (s *VectorStore) Insert(ctx context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytes := s.dimension / 8
	for _, e := range entries {
		if len(e.Vector) != bytes {
			return domain.ValidationError("vector has %d bytes, store expects %d", len(e.Vector), bytes)
		}
		if len(e.Text) > domain.MaxEntryTextBytes {
			return domain.ValidationError("entry text is %d bytes, limit is %d", len(e.Text), domain.MaxEntryTextBytes)
		}
	}

	if s.tx == nil {
		// The transaction outlives this call, so it must not inherit ctx.
		tx, err := s.db.BeginTx(context.Background(), nil)
		if err != nil {
			return domain.StorageError("begin", err)
		}
		s.tx = tx
	}

	if err := s.insertRows(ctx, entries); err != nil {
		s.rollbackLocked()
		return err
	}
	return nil
}

func (s *VectorStore) insertRows(ctx context.Context, entries []domain.IndexEntry) error {
	stmt, err := s.tx.PrepareContext(ctx,
		"INSERT INTO index_entries (text_hash, text, vector) VALUES (?, ?, ?)")
	if err != nil {
		return domain.StorageError("prepare insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.TextHash, e.Text, []byte(e.Vector)); err != nil {
			return domain.StorageError("insert", err)
		}
	}
	return nil
}

// Rollback discards the pending transaction.
func (s *VectorStore) Rollback(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbackLocked()
	return nil
}

// rollbackLocked must be called with s.mu held.
func (s *VectorStore) rollbackLocked() {
	if s.tx == nil {
		return
	}
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn("Vector store rollback: %v", err)
	}
	s.tx = nil
}

// Commit publishes staged entries. A failed commit discards them.
func (s *VectorStore) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return domain.StorageError("commit", err)
	}
	return nil
}

// Search ranks committed entries by Hamming distance to query.
func (s *VectorStore) Search(ctx context.Context, query domain.BinaryVector, k int) ([]domain.SearchHit, error) {
	if k < 1 {
		return nil, domain.ValidationError("k must be at least 1, got %d", k)
	}
	if want := s.Dimension() / 8; len(query) != want {
		return nil, domain.ValidationError("query vector has %d bytes, store expects %d", len(query), want)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, text, vector FROM index_entries")
	if err != nil {
		return nil, domain.StorageError("search", err)
	}
	defer rows.Close()

	c := domain.NewHitCollector(k)
	for rows.Next() {
		var (
			id     int64
			text   string
			vector []byte
		)
		if err := rows.Scan(&id, &text, &vector); err != nil {
			return nil, domain.StorageError("scan entry", err)
		}
		d := domain.HammingDistance(query, vector)
		if d < 0 {
			return nil, domain.StorageError("search", fmt.Errorf("entry %d has a %d-byte vector", id, len(vector)))
		}
		c.Offer(id, text, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("search", err)
	}

	return c.Hits(), nil
}

// Reset discards pending rows, drops the collection and recreates it for dimension.
func (s *VectorStore) Reset(ctx context.Context, dimension int) error {
	if dimension <= 0 || dimension%8 != 0 {
		return domain.ConfigurationError("vector dimension %d is not a positive multiple of 8", dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollbackLocked()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("begin reset", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		"DROP TABLE IF EXISTS index_entries",
		"DELETE FROM sqlite_sequence WHERE name = 'index_entries'",
		createEntriesTable,
		createEntriesIndex,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return domain.StorageError("reset", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO collection_meta (key, value) VALUES (?, ?)",
		metaDimension, strconv.Itoa(dimension)); err != nil {
		return domain.StorageError("reset", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.StorageError("reset", err)
	}

	s.dimension = dimension
	return nil
}

// Count returns the number of committed entries.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_entries").Scan(&n); err != nil {
		return 0, domain.StorageError("count", err)
	}
	return n, nil
}

// Dimension returns the collection dimension.
func (s *VectorStore) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

// Ping checks the database connection.
func (s *VectorStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.StorageError("ping", err)
	}
	return nil
}

// Close rolls back pending rows and closes the database.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}
