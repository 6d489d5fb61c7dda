package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure FailureStore implements the interface.
var _ driven.FailureStore = (*FailureStore)(nil)

// FailureStore is an in-memory implementation of driven.FailureStore.
type FailureStore struct {
	mu       sync.RWMutex
	failures map[string]domain.ExtractionFailure
}

// NewFailureStore creates a new in-memory failure store.
func NewFailureStore() *FailureStore {
	return &FailureStore{
		failures: make(map[string]domain.ExtractionFailure),
	}
}

// Add records a failure.
func (s *FailureStore) Add(_ context.Context, failure *domain.ExtractionFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failure.ID] = *failure
	return nil
}

// Remove deletes a failure by ID.
func (s *FailureStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, id)
	return nil
}

// IsFailed reports whether a document has a failure record.
func (s *FailureStore) IsFailed(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.failures {
		if f.DocumentName == name {
			return true, nil
		}
	}
	return false, nil
}

// List returns all failures, most recent first.
func (s *FailureStore) List(_ context.Context) ([]domain.ExtractionFailure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ExtractionFailure, 0, len(s.failures))
	for _, f := range s.failures {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].FailedAt.Equal(result[j].FailedAt) {
			return result[i].FailedAt.After(result[j].FailedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
