package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService rebuilds the document table from completed extractions.
type IndexService struct {
	chunks driven.ChunkStore
	index  driven.DocumentIndex
}

// NewIndexService creates an index service.
func NewIndexService(chunks driven.ChunkStore, index driven.DocumentIndex) *IndexService {
	return &IndexService{chunks: chunks, index: index}
}

// Rebuild replaces every document row. Documents without a completion
// marker are left out. Returns the number of indexed documents.
func (s *IndexService) Rebuild(ctx context.Context) (int, error) {
	extractions, err := s.chunks.Extractions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list extractions: %w", err)
	}
	stats, err := s.chunks.ChunkStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("chunk stats: %w", err)
	}

	byName := make(map[string]domain.ChunkStats, len(stats))
	for _, st := range stats {
		byName[st.DocumentName] = st
	}

	docs := make([]domain.Document, 0, len(extractions))
	for _, e := range extractions {
		st, ok := byName[e.DocumentName]
		if !ok {
			logger.Warn("Document %s is marked extracted but has no chunks", e.DocumentName)
			continue
		}
		docs = append(docs, domain.Document{
			ID:         domain.DocumentKey(e.DocumentName, e.EpochTime, st.Count, st.StartID),
			Name:       e.DocumentName,
			Path:       e.Path,
			Type:       e.Type,
			CreatedAt:  time.Unix(e.EpochTime, 0).UTC(),
			EpochTime:  e.EpochTime,
			ChunkCount: st.Count,
			StartID:    st.StartID,
			EndID:      st.EndID,
		})
	}

	if err := s.index.ReplaceDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("replace documents: %w", err)
	}
	logger.Info("Indexed %d documents", len(docs))
	return len(docs), nil
}
