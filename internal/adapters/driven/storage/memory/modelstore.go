package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure ModelStore implements the interface.
var _ driven.ModelStore = (*ModelStore)(nil)

// ModelStore is an in-memory implementation of driven.ModelStore.
type ModelStore struct {
	mu     sync.RWMutex
	models map[string]domain.TopicModel
}

// NewModelStore creates a new in-memory model store.
func NewModelStore() *ModelStore {
	return &ModelStore{models: make(map[string]domain.TopicModel)}
}

// SaveModel stores or replaces a topic model.
func (s *ModelStore) SaveModel(_ context.Context, model *domain.TopicModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[model.Topic] = *model
	return nil
}

// GetModel returns a model by topic.
func (s *ModelStore) GetModel(_ context.Context, topic string) (*domain.TopicModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[topic]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

// HasModel reports whether a topic has a stored model.
func (s *ModelStore) HasModel(_ context.Context, topic string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.models[topic]
	return ok, nil
}

// DeleteModels removes every stored model.
func (s *ModelStore) DeleteModels(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = make(map[string]domain.TopicModel)
	return nil
}

// ListModels returns every stored model ordered by topic.
func (s *ModelStore) ListModels(_ context.Context) ([]domain.TopicModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.TopicModel, 0, len(s.models))
	for _, m := range s.models {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Topic < result[j].Topic })
	return result, nil
}
