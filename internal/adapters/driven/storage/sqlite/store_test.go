package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/retry"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "lexicon-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir, WithRetryPolicy(retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}))
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// chunksOf builds ordered chunks for a document.
func chunksOf(name string, texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{DocumentName: name, Index: i, Text: text}
	}
	return chunks
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, DatabaseFile, filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsRunOnce(t *testing.T) {
	tempDir := t.TempDir()

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.ChunkStore().InsertChunks(context.Background(), chunksOf("a", "x"), nil))
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)

	chunks, err := second.ChunkStore().ChunksAfter(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 1, "data survives reopening")
}

// ==================== Chunk Store ====================

func TestChunkStore_InsertAndRead(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	require.NoError(t, cs.InsertChunks(ctx, chunksOf("alpha", "one ", "two"), nil))
	require.NoError(t, cs.InsertChunks(ctx, chunksOf("beta", "three"), nil))

	all, err := cs.ChunksAfter(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)
	assert.Equal(t, "alpha", all[0].DocumentName)
	assert.Equal(t, "beta", all[2].DocumentName)

	page, err := cs.ChunksAfter(ctx, all[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	doc, err := cs.DocumentChunks(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.Equal(t, 0, doc[0].Index)
	assert.Equal(t, "two", doc[1].Text)
}

func TestChunkStore_InsertIsIdempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	require.NoError(t, cs.InsertChunks(ctx, chunksOf("alpha", "one ", "two"), nil))
	require.NoError(t, cs.InsertChunks(ctx, chunksOf("alpha", "changed ", "two"), nil))

	doc, err := cs.DocumentChunks(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, doc, 2)
	assert.Equal(t, "one ", doc[0].Text, "existing (document, index) rows are kept")
}

func TestChunkStore_CompletionMarker(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	done, err := cs.IsExtracted(ctx, "alpha")
	require.NoError(t, err)
	assert.False(t, done)

	marker := domain.Extraction{
		DocumentName: "alpha",
		Path:         "/corpus/alpha.md",
		Type:         domain.FileTypeNote,
		EpochTime:    1700000000,
		ChunkCount:   1,
		CompletedAt:  time.Now(),
	}
	require.NoError(t, cs.InsertChunks(ctx, chunksOf("alpha", "text"), []domain.Extraction{marker}))

	done, err = cs.IsExtracted(ctx, "alpha")
	require.NoError(t, err)
	assert.True(t, done)

	extractions, err := cs.Extractions(ctx)
	require.NoError(t, err)
	require.Len(t, extractions, 1)
	assert.Equal(t, domain.FileTypeNote, extractions[0].Type)
	assert.Equal(t, int64(1700000000), extractions[0].EpochTime)
	assert.False(t, extractions[0].CompletedAt.IsZero())
}

func TestChunkStore_ChunkStats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	require.NoError(t, cs.InsertChunks(ctx, chunksOf("beta", "a", "b", "c"), nil))
	require.NoError(t, cs.InsertChunks(ctx, chunksOf("alpha", "d"), nil))

	stats, err := cs.ChunkStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.ChunkStats{DocumentName: "alpha", Count: 1, StartID: 4, EndID: 4}, stats[0])
	assert.Equal(t, domain.ChunkStats{DocumentName: "beta", Count: 3, StartID: 1, EndID: 3}, stats[1])
}

// ==================== Failure Store ====================

func TestFailureStore(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	fs := store.FailureStore()

	require.NoError(t, fs.Add(ctx, &domain.ExtractionFailure{
		ID: "f1", DocumentName: "broken", Path: "/corpus/broken.pdf",
		Reason: "pdftotext failed", FailedAt: time.Now(),
	}))

	failed, err := fs.IsFailed(ctx, "broken")
	require.NoError(t, err)
	assert.True(t, failed)

	list, err := fs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pdftotext failed", list[0].Reason)

	require.NoError(t, fs.Remove(ctx, "f1"))
	failed, err = fs.IsFailed(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, failed)
}

// ==================== Document Index ====================

func TestDocumentIndex_Replace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	idx := store.DocumentIndex()

	created := time.Unix(1700000000, 0).UTC()
	require.NoError(t, idx.ReplaceDocuments(ctx, []domain.Document{
		{ID: "k1", Name: "old", Path: "/old.md", Type: domain.FileTypeNote, CreatedAt: created},
	}))
	require.NoError(t, idx.ReplaceDocuments(ctx, []domain.Document{
		{ID: "k2", Name: "new", Path: "/new.pdf", Type: domain.FileTypePDF, CreatedAt: created,
			EpochTime: 1700000000, ChunkCount: 2, StartID: 5, EndID: 6},
	}))

	docs, err := idx.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].Name)
	assert.Equal(t, domain.FileTypePDF, docs[0].Type)
	assert.True(t, created.Equal(docs[0].CreatedAt))

	_, err = idx.GetDocument(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := idx.GetDocument(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, int64(6), doc.EndID)
}

// ==================== Write retry ====================

func TestWrite_ContentionExhausted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	calls := 0
	err := store.write(context.Background(), "test write", func(*sql.Tx) error {
		calls++
		return errors.New("database is locked (5) (SQLITE_BUSY)")
	})

	assert.ErrorIs(t, err, domain.ErrStoreContention)
	assert.Equal(t, 3, calls)
}

func TestWrite_PermanentErrorNotRetried(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	calls := 0
	err := store.write(context.Background(), "test write", func(*sql.Tx) error {
		calls++
		return errors.New("constraint failed")
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrStoreContention)
	assert.Equal(t, 1, calls)
}

func TestWrite_RecoversAfterLock(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	calls := 0
	err := store.write(ctx, "test write", func(tx *sql.Tx) error {
		calls++
		if calls == 1 {
			return errors.New("database is locked")
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO word_frequencies (word, frequency) VALUES ('go', 1)")
		return err
	})

	require.NoError(t, err)
	total, err := store.FrequencyStore().TotalFrequency(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestIsContention(t *testing.T) {
	assert.True(t, isContention(errors.New("database is locked")))
	assert.True(t, isContention(errors.New("step: SQLITE_BUSY")))
	assert.False(t, isContention(errors.New("no such table: chunks")))
}

// ==================== Maintenance ====================

func TestMaintenance_ResetAndStats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	m := store.Maintenance()

	require.NoError(t, store.ChunkStore().InsertChunks(ctx, chunksOf("alpha", "a", "b"), nil))
	require.NoError(t, store.FrequencyStore().AddFrequencies(ctx, map[string]int64{"go": 3, "rust": 1}))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Words)
	assert.Equal(t, int64(4), stats.TotalWords)

	require.NoError(t, m.Reset(ctx, domain.TableChunks, domain.TableFrequencies))

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.Words)

	require.NoError(t, store.ChunkStore().InsertChunks(ctx, chunksOf("beta", "c"), nil))
	chunks, err := store.ChunkStore().ChunksAfter(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, int64(1), chunks[0].ID, "chunk ids restart after reset")
}

func TestMaintenance_ResetUnknownTable(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.Maintenance().Reset(context.Background(), domain.Table("users"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
