package driven

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// ChunkStore persists document chunks and extraction completion markers.
type ChunkStore interface {
	// InsertChunks stores a batch of chunks and marks the given extractions
	// complete in the same transaction. Chunks whose (document, index)
	// already exists are ignored.
	InsertChunks(ctx context.Context, chunks []domain.Chunk, completed []domain.Extraction) error

	// ChunksAfter returns up to limit chunks with id > afterID in ascending
	// id order.
	ChunksAfter(ctx context.Context, afterID int64, limit int) ([]domain.Chunk, error)

	// DocumentChunks returns the chunks of one document in index order.
	DocumentChunks(ctx context.Context, name string) ([]domain.Chunk, error)

	// Extractions returns every completion marker.
	Extractions(ctx context.Context) ([]domain.Extraction, error)

	// IsExtracted reports whether a document has a completion marker.
	IsExtracted(ctx context.Context, name string) (bool, error)

	// ChunkStats returns the chunk range of every stored document.
	ChunkStats(ctx context.Context) ([]domain.ChunkStats, error)
}

// FailureStore persists documents whose extraction failed.
// Failed documents are skipped during later extraction runs.
type FailureStore interface {
	// Add records a failure.
	Add(ctx context.Context, failure *domain.ExtractionFailure) error

	// Remove deletes a failure by ID.
	Remove(ctx context.Context, id string) error

	// IsFailed reports whether a document has a failure record.
	IsFailed(ctx context.Context, name string) (bool, error)

	// List returns all failures, most recent first.
	List(ctx context.Context) ([]domain.ExtractionFailure, error)
}

// DocumentIndex persists the derived document table.
type DocumentIndex interface {
	// ReplaceDocuments drops every document row and writes docs.
	ReplaceDocuments(ctx context.Context, docs []domain.Document) error

	// Documents returns all documents ordered by name.
	Documents(ctx context.Context) ([]domain.Document, error)

	// GetDocument returns one document by name or domain.ErrNotFound.
	GetDocument(ctx context.Context, name string) (*domain.Document, error)
}
