package driving

import (
	"context"
	"time"
)

// ExtractionService turns a folder of source files into stored chunks.
type ExtractionService interface {
	// Extract processes every new document under the request folder.
	Extract(ctx context.Context, req ExtractRequest) (*ExtractReport, error)

	// Watch runs Extract once, then again whenever files change, until ctx
	// is cancelled.
	Watch(ctx context.Context, req ExtractRequest, onReport func(*ExtractReport)) error
}

// ExtractRequest configures one extraction run.
// Zero values fall back to configured settings.
type ExtractRequest struct {
	Folder    string
	ChunkSize int
}

// ExtractReport summarises an extraction run.
type ExtractReport struct {
	// Found is the number of recognised files in the folder.
	Found int

	// Skipped counts documents already extracted or previously failed.
	Skipped int

	// Extracted counts documents whose chunks were all stored.
	Extracted int

	// Failed counts documents that could not be extracted this run.
	Failed int

	// Chunks is the number of chunks submitted for storage.
	Chunks int

	// Interrupted is set when the run stopped early on cancellation.
	Interrupted bool

	Duration time.Duration
}

// IndexService rebuilds the derived document table.
type IndexService interface {
	Rebuild(ctx context.Context) (int, error)
}
