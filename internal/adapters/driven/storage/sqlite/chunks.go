package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// InsertChunks stores chunks and completion markers in one transaction.
func (s *chunkStore) InsertChunks(ctx context.Context, chunks []domain.Chunk, completed []domain.Extraction) error {
	if len(chunks) == 0 && len(completed) == 0 {
		return nil
	}

	return s.store.write(ctx, "inserting chunks", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO chunks (document_name, chunk_index, chunk_text)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			if _, err := stmt.ExecContext(ctx, chunk.DocumentName, chunk.Index, chunk.Text); err != nil {
				return fmt.Errorf("saving chunk: %w", err)
			}
		}

		for _, e := range completed {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO extractions (document_name, path, file_type, epoch_time, chunk_count, completed_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(document_name) DO UPDATE SET
					path = excluded.path,
					file_type = excluded.file_type,
					epoch_time = excluded.epoch_time,
					chunk_count = excluded.chunk_count,
					completed_at = excluded.completed_at
			`, e.DocumentName, e.Path, string(e.Type), e.EpochTime, e.ChunkCount, e.CompletedAt.UTC()); err != nil {
				return fmt.Errorf("marking extraction: %w", err)
			}
		}
		return nil
	})
}

// ChunksAfter returns chunks with id > afterID in ascending id order.
func (s *chunkStore) ChunksAfter(ctx context.Context, afterID int64, limit int) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_name, chunk_index, chunk_text
		FROM chunks WHERE id > ? ORDER BY id LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DocumentChunks returns the chunks of one document in index order.
func (s *chunkStore) DocumentChunks(ctx context.Context, name string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_name, chunk_index, chunk_text
		FROM chunks WHERE document_name = ? ORDER BY chunk_index
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying document chunks: %w", err)
	}
	defer rows.Close()

	return scanChunks(rows)
}

// Extractions returns every completion marker ordered by document name.
func (s *chunkStore) Extractions(ctx context.Context) ([]domain.Extraction, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_name, path, file_type, epoch_time, chunk_count, completed_at
		FROM extractions ORDER BY document_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying extractions: %w", err)
	}
	defer rows.Close()

	var extractions []domain.Extraction //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var e domain.Extraction
		var fileType string
		var completedAt sql.NullTime
		if err := rows.Scan(&e.DocumentName, &e.Path, &fileType, &e.EpochTime, &e.ChunkCount, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		e.Type = domain.FileType(fileType)
		if completedAt.Valid {
			e.CompletedAt = completedAt.Time
		}
		extractions = append(extractions, e)
	}
	return extractions, rows.Err()
}

// IsExtracted reports whether a document has a completion marker.
func (s *chunkStore) IsExtracted(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM extractions WHERE document_name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking extraction: %w", err)
	}
	return count > 0, nil
}

// ChunkStats returns the chunk range of every stored document.
func (s *chunkStore) ChunkStats(ctx context.Context) ([]domain.ChunkStats, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_name, COUNT(*), MIN(id), MAX(id)
		FROM chunks GROUP BY document_name ORDER BY document_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunk stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.ChunkStats //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var st domain.ChunkStats
		if err := rows.Scan(&st.DocumentName, &st.Count, &st.StartID, &st.EndID); err != nil {
			return nil, fmt.Errorf("scanning chunk stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// ==================== Failure Store ====================

// failureStore implements driven.FailureStore.
type failureStore struct {
	store *Store
}

var _ driven.FailureStore = (*failureStore)(nil)

// Add records a failure.
func (s *failureStore) Add(ctx context.Context, failure *domain.ExtractionFailure) error {
	return s.store.write(ctx, "adding failure", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO extraction_failures (id, document_name, path, reason, failed_at)
			VALUES (?, ?, ?, ?, ?)
		`, failure.ID, failure.DocumentName, failure.Path, failure.Reason, failure.FailedAt.UTC())
		return err
	})
}

// Remove deletes a failure by ID.
func (s *failureStore) Remove(ctx context.Context, id string) error {
	return s.store.write(ctx, "removing failure", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM extraction_failures WHERE id = ?", id)
		return err
	})
}

// IsFailed reports whether a document has a failure record.
func (s *failureStore) IsFailed(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM extraction_failures WHERE document_name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking failure: %w", err)
	}
	return count > 0, nil
}

// List returns all failures, most recent first.
func (s *failureStore) List(ctx context.Context) ([]domain.ExtractionFailure, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_name, path, reason, failed_at
		FROM extraction_failures ORDER BY failed_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var failures []domain.ExtractionFailure //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var f domain.ExtractionFailure
		var failedAt sql.NullTime
		if err := rows.Scan(&f.ID, &f.DocumentName, &f.Path, &f.Reason, &failedAt); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		if failedAt.Valid {
			f.FailedAt = failedAt.Time
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// ==================== Document Index ====================

// documentIndex implements driven.DocumentIndex.
type documentIndex struct {
	store *Store
}

var _ driven.DocumentIndex = (*documentIndex)(nil)

// ReplaceDocuments drops every document row and writes docs.
func (s *documentIndex) ReplaceDocuments(ctx context.Context, docs []domain.Document) error {
	return s.store.write(ctx, "replacing documents", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
			return fmt.Errorf("clearing documents: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO documents (name, id, path, file_type, created_time, epoch_time, chunk_count, start_id, end_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, d := range docs {
			if _, err := stmt.ExecContext(ctx, d.Name, d.ID, d.Path, string(d.Type), d.CreatedAt.UTC(),
				d.EpochTime, d.ChunkCount, d.StartID, d.EndID); err != nil {
				return fmt.Errorf("saving document %s: %w", d.Name, err)
			}
		}
		return nil
	})
}

// Documents returns all documents ordered by name.
func (s *documentIndex) Documents(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, id, path, file_type, created_time, epoch_time, chunk_count, start_id, end_id
		FROM documents ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// GetDocument returns one document by name.
func (s *documentIndex) GetDocument(ctx context.Context, name string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, id, path, file_type, created_time, epoch_time, chunk_count, start_id, end_id
		FROM documents WHERE name = ?
	`, name)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var fileType string
	var created sql.NullTime
	if err := row.Scan(&doc.Name, &doc.ID, &doc.Path, &fileType, &created,
		&doc.EpochTime, &doc.ChunkCount, &doc.StartID, &doc.EndID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Type = domain.FileType(fileType)
	if created.Valid {
		doc.CreatedAt = created.Time
	}
	return &doc, nil
}

func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentName, &c.Index, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
