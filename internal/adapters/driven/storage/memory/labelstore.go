package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure LabelStore implements the interface.
var _ driven.LabelStore = (*LabelStore)(nil)

// LabelStore is an in-memory implementation of driven.LabelStore.
// It keeps a copy so callers cannot mutate the stored set.
type LabelStore struct {
	mu     sync.Mutex
	labels *domain.LabelSet
	saves  int
}

// NewLabelStore creates a label store holding a copy of initial.
func NewLabelStore(initial *domain.LabelSet) *LabelStore {
	labels := domain.NewLabelSet()
	labels.Merge(initial)
	return &LabelStore{labels: labels}
}

// Load returns a copy of the stored label set.
func (s *LabelStore) Load(_ context.Context) (*domain.LabelSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := domain.NewLabelSet()
	out.Merge(s.labels)
	return out, nil
}

// Save replaces the stored label set.
func (s *LabelStore) Save(_ context.Context, labels *domain.LabelSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = domain.NewLabelSet()
	s.labels.Merge(labels)
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *LabelStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
