package driving

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// AggregationService counts stemmed words across stored chunks.
type AggregationService interface {
	// Aggregate tokenises the chunks in the range and adds their counts to
	// the stored frequencies.
	Aggregate(ctx context.Context, r domain.ChunkRange) (*AggregateReport, error)

	// Prune removes words whose frequency exceeds share of the total.
	Prune(ctx context.Context, share float64) (int, error)
}

// AggregateReport summarises an aggregation run.
type AggregateReport struct {
	Chunks      int
	Tokens      int64
	Words       int
	LastID      int64
	Interrupted bool
}

// CoverageService selects the vocabulary and derives TF-IDF weights.
type CoverageService interface {
	// SelectVocabulary keeps the most frequent words that together cover
	// fraction of all word occurrences.
	SelectVocabulary(ctx context.Context, fraction float64) (*CoverageReport, error)

	// ComputeTFIDF writes the tfidf weight of every vector entry.
	ComputeTFIDF(ctx context.Context) (*domain.TermMatrix, error)

	// Similar returns the k documents closest to name by TF-IDF cosine.
	Similar(ctx context.Context, name string, k int) ([]SimilarDocument, error)
}

// CoverageReport summarises a vocabulary selection.
type CoverageReport struct {
	Words    int
	Covered  int64
	Total    int64
	Fraction float64
}

// SimilarDocument is one result of a similarity query.
type SimilarDocument struct {
	Name       string
	Similarity float64
}

// VectorService builds per-document vectors over the vocabulary.
type VectorService interface {
	Vectorise(ctx context.Context) (*VectoriseReport, error)
}

// VectoriseReport summarises a vectorisation run.
type VectoriseReport struct {
	Documents   int
	Entries     int
	Failed      int
	Interrupted bool
}
