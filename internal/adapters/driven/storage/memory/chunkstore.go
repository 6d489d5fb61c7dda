package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

type chunkKey struct {
	document string
	index    int
}

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu          sync.RWMutex
	nextID      int64
	chunks      []domain.Chunk
	keys        map[chunkKey]struct{}
	extractions map[string]domain.Extraction
	insertErr   error
	inserts     int
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		nextID:      1,
		keys:        make(map[chunkKey]struct{}),
		extractions: make(map[string]domain.Extraction),
	}
}

// FailInserts makes every later InsertChunks call return err.
// A nil err restores normal behaviour.
func (s *ChunkStore) FailInserts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertErr = err
}

// Inserts returns how many InsertChunks calls succeeded.
func (s *ChunkStore) Inserts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inserts
}

// InsertChunks stores chunks, ignoring existing (document, index) pairs.
func (s *ChunkStore) InsertChunks(_ context.Context, chunks []domain.Chunk, completed []domain.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}

	for _, c := range chunks {
		key := chunkKey{document: c.DocumentName, index: c.Index}
		if _, ok := s.keys[key]; ok {
			continue
		}
		s.keys[key] = struct{}{}
		c.ID = s.nextID
		s.nextID++
		s.chunks = append(s.chunks, c)
	}
	for _, e := range completed {
		s.extractions[e.DocumentName] = e
	}
	s.inserts++
	return nil
}

// ChunksAfter returns chunks with id > afterID in ascending id order.
func (s *ChunkStore) ChunksAfter(_ context.Context, afterID int64, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, c := range s.chunks {
		if c.ID <= afterID {
			continue
		}
		result = append(result, c)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// DocumentChunks returns the chunks of one document in index order.
func (s *ChunkStore) DocumentChunks(_ context.Context, name string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentName == name {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

// Extractions returns every completion marker ordered by document name.
func (s *ChunkStore) Extractions(_ context.Context) ([]domain.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Extraction, 0, len(s.extractions))
	for _, e := range s.extractions {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DocumentName < result[j].DocumentName })
	return result, nil
}

// IsExtracted reports whether a document has a completion marker.
func (s *ChunkStore) IsExtracted(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.extractions[name]
	return ok, nil
}

// ChunkStats returns the chunk range of every stored document.
func (s *ChunkStore) ChunkStats(_ context.Context) ([]domain.ChunkStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDoc := make(map[string]*domain.ChunkStats)
	for _, c := range s.chunks {
		st, ok := byDoc[c.DocumentName]
		if !ok {
			st = &domain.ChunkStats{DocumentName: c.DocumentName, StartID: c.ID, EndID: c.ID}
			byDoc[c.DocumentName] = st
		}
		st.Count++
		st.StartID = min(st.StartID, c.ID)
		st.EndID = max(st.EndID, c.ID)
	}
	result := make([]domain.ChunkStats, 0, len(byDoc))
	for _, st := range byDoc {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DocumentName < result[j].DocumentName })
	return result, nil
}
