package driven

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// FrequencyStore persists corpus-wide word counts.
type FrequencyStore interface {
	// AddFrequencies adds counts to the stored frequencies in one
	// transaction, inserting missing words.
	AddFrequencies(ctx context.Context, counts map[string]int64) error

	// TotalFrequency returns the sum of all frequencies.
	TotalFrequency(ctx context.Context) (int64, error)

	// FrequencyPage returns up to limit words ordered by frequency
	// descending then word ascending, starting after the given entry.
	// A nil after starts from the top.
	FrequencyPage(ctx context.Context, after *domain.WordFrequency, limit int) ([]domain.WordFrequency, error)

	// DeleteAbove removes words whose frequency exceeds threshold and
	// returns how many were removed.
	DeleteAbove(ctx context.Context, threshold int64) (int, error)
}

// VocabularyStore persists the coverage vocabulary.
type VocabularyStore interface {
	// ReplaceVocabulary drops the vocabulary and writes entries in one
	// transaction.
	ReplaceVocabulary(ctx context.Context, entries []domain.VocabularyEntry) error

	// Vocabulary returns the vocabulary ordered by frequency descending.
	Vocabulary(ctx context.Context) ([]domain.VocabularyEntry, error)
}

// VectorStore persists per-document vectors.
type VectorStore interface {
	// ReplaceDocumentVector replaces every entry of one document and its
	// token total in one transaction.
	ReplaceDocumentVector(ctx context.Context, totals domain.DocumentTotals, entries []domain.VectorEntry) error

	// VectorEntries returns all stored entries ordered by document then word.
	VectorEntries(ctx context.Context) ([]domain.VectorEntry, error)

	// DocumentTotals returns the token total of every vectorised document.
	DocumentTotals(ctx context.Context) ([]domain.DocumentTotals, error)

	// UpdateTFIDF writes the tfidf value of the given entries.
	UpdateTFIDF(ctx context.Context, entries []domain.VectorEntry) error
}

// ModelStore persists per-topic classifiers.
type ModelStore interface {
	SaveModel(ctx context.Context, model *domain.TopicModel) error

	// GetModel returns a model or domain.ErrNotFound.
	GetModel(ctx context.Context, topic string) (*domain.TopicModel, error)

	HasModel(ctx context.Context, topic string) (bool, error)

	DeleteModels(ctx context.Context) error

	ListModels(ctx context.Context) ([]domain.TopicModel, error)
}

// LabelStore persists the topic label set.
type LabelStore interface {
	// Load returns the stored label set, empty when none exists.
	Load(ctx context.Context) (*domain.LabelSet, error)

	// Save replaces the stored label set.
	Save(ctx context.Context, labels *domain.LabelSet) error
}

// Maintenance resets stage outputs and reports row counts.
type Maintenance interface {
	Reset(ctx context.Context, tables ...domain.Table) error
	Stats(ctx context.Context) (*domain.Stats, error)
}
