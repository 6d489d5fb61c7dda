// Package sqlite provides a unified SQLite-based implementation of the
// driven store interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every pipeline store
// through a single database:
//
//   - ChunkStore: Chunks and extraction completion markers
//   - FailureStore: Extraction skip list
//   - DocumentIndex: Derived document table
//   - FrequencyStore / VocabularyStore: Word counts and coverage vocabulary
//   - VectorStore: Per-document vectors and token totals
//   - ModelStore: Persisted topic classifiers
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.lexicon/data/lexicon.db
//
// # Concurrency
//
// The database runs in WAL mode so readers never block the writer. Writes
// from this process are serialised through one mutex, and every write is
// retried while another process holds the database lock. A write that is
// still locked when the retry budget runs out fails with
// domain.ErrStoreContention.
package sqlite
