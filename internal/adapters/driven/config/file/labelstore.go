package file

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure LabelStore implements the interface.
var _ driven.LabelStore = (*LabelStore)(nil)

// LabelStore persists the topic label set as a YAML mapping of topic to
// document names:
//
//	golang:
//	  - concurrency-notes
//	  - channels
//	baking: []
type LabelStore struct {
	mu   sync.Mutex
	path string
}

// NewLabelStore creates a label store backed by the file at path.
// The file is created on the first Save.
func NewLabelStore(path string) *LabelStore {
	return &LabelStore{path: path}
}

// Path returns the label file path.
func (s *LabelStore) Path() string {
	return s.path
}

// Load reads the label set. A missing file is an empty set.
func (s *LabelStore) Load(_ context.Context) (*domain.LabelSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels := domain.NewLabelSet()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return labels, nil
		}
		return nil, fmt.Errorf("reading labels: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, s.path, err)
	}

	for topic, docs := range raw {
		labels.AddTopic(topic)
		for _, doc := range docs {
			labels.Add(topic, doc)
		}
	}
	return labels, nil
}

// Save replaces the label file with labels.
func (s *LabelStore) Save(_ context.Context, labels *domain.LabelSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string][]string)
	for _, topic := range labels.Topics() {
		raw[topic] = labels.Members(topic)
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}
	return writeFileAtomic(s.path, data, 0600)
}
