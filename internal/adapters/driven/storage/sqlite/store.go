package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/lexicon/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/retry"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "lexicon.db"

// Store is a unified SQLite-based storage that provides access to
// all pipeline store interfaces through wrapper types.
type Store struct {
	db     *sql.DB
	path   string
	policy retry.Policy

	// writeMu serialises writers of this process.
	writeMu sync.Mutex
}

// Option configures the store.
type Option func(*Store)

// WithRetryPolicy sets how long writes wait for a locked database.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lexicon/data/lexicon.db.
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lexicon", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode so readers do not block the writer
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		path:   dbPath,
		policy: retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// FailureStore returns a FailureStore interface backed by this store.
func (s *Store) FailureStore() driven.FailureStore {
	return &failureStore{store: s}
}

// DocumentIndex returns a DocumentIndex interface backed by this store.
func (s *Store) DocumentIndex() driven.DocumentIndex {
	return &documentIndex{store: s}
}

// FrequencyStore returns a FrequencyStore interface backed by this store.
func (s *Store) FrequencyStore() driven.FrequencyStore {
	return &frequencyStore{store: s}
}

// VocabularyStore returns a VocabularyStore interface backed by this store.
func (s *Store) VocabularyStore() driven.VocabularyStore {
	return &vocabularyStore{store: s}
}

// VectorStore returns a VectorStore interface backed by this store.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// ModelStore returns a ModelStore interface backed by this store.
func (s *Store) ModelStore() driven.ModelStore {
	return &modelStore{store: s}
}

// Maintenance returns a Maintenance interface backed by this store.
func (s *Store) Maintenance() driven.Maintenance {
	return &maintenance{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
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
	}

	return nil
}

// write runs fn in a transaction, serialised with the other writers of
// this process and retried while the database is locked.
func (s *Store) write(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := retry.Do(ctx, s.policy, op, isContention, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreContention, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// isContention reports whether err means another connection holds the lock.
func isContention(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// ==================== Maintenance ====================

// maintenance implements driven.Maintenance.
type maintenance struct {
	store *Store
}

var _ driven.Maintenance = (*maintenance)(nil)

// resetStatements lists the statements that clear each table group.
var resetStatements = map[domain.Table][]string{
	domain.TableChunks: {
		"DELETE FROM chunks",
		"DELETE FROM extractions",
		"DELETE FROM sqlite_sequence WHERE name = 'chunks'",
	},
	domain.TableDocuments:   {"DELETE FROM documents"},
	domain.TableFailures:    {"DELETE FROM extraction_failures"},
	domain.TableFrequencies: {"DELETE FROM word_frequencies"},
	domain.TableVocabulary:  {"DELETE FROM coverage_vocabulary"},
	domain.TableVectors:     {"DELETE FROM document_vectors", "DELETE FROM document_totals"},
	domain.TableModels:      {"DELETE FROM topic_models"},
}

// Reset clears the given tables in one transaction.
func (m *maintenance) Reset(ctx context.Context, tables ...domain.Table) error {
	return m.store.write(ctx, "resetting tables", func(tx *sql.Tx) error {
		for _, table := range tables {
			stmts, ok := resetStatements[table]
			if !ok {
				return fmt.Errorf("%w: unknown table %q", domain.ErrInvalidInput, table)
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("clearing %s: %w", table, err)
				}
			}
		}
		return nil
	})
}

// Stats counts the rows of every table.
func (m *maintenance) Stats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	counts := []struct {
		query string
		dest  any
	}{
		{"SELECT COUNT(*) FROM documents", &stats.Documents},
		{"SELECT COUNT(*) FROM chunks", &stats.Chunks},
		{"SELECT COUNT(*) FROM extractions", &stats.Extractions},
		{"SELECT COUNT(*) FROM extraction_failures", &stats.Failures},
		{"SELECT COUNT(*) FROM word_frequencies", &stats.Words},
		{"SELECT COALESCE(SUM(frequency), 0) FROM word_frequencies", &stats.TotalWords},
		{"SELECT COUNT(*) FROM coverage_vocabulary", &stats.Vocabulary},
		{"SELECT COUNT(DISTINCT document_name) FROM document_totals", &stats.Vectors},
		{"SELECT COUNT(*) FROM topic_models", &stats.Models},
	}
	for _, c := range counts {
		if err := m.store.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}
	}
	return &stats, nil
}
