package driven

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// PostProcessor processes extracted text to produce chunks.
// PostProcessors are chained in a pipeline (cleaning, then chunking).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// Processors that rewrite text (e.g., cleaner) update doc.Content and
	// pass chunks through. Processors that create chunks (e.g., chunker)
	// receive nil and return new chunks.
	Process(ctx context.Context, doc *domain.ExtractedDocument, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.ExtractedDocument) ([]domain.Chunk, error)
}

// PipelineBuilder creates a pipeline for a given chunk size.
type PipelineBuilder interface {
	Build(chunkSize int) (PostProcessorPipeline, error)
}
