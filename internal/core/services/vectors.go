package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/learn"
	"github.com/custodia-labs/lexicon/internal/logger"
	"github.com/custodia-labs/lexicon/internal/tokeniser"
)

// Ensure VectorService implements the interface.
var _ driving.VectorService = (*VectorService)(nil)

// vectorEpsilon keeps normalisation finite for empty vectors.
const vectorEpsilon = 1e-12

// VectorService builds a count vector over the coverage vocabulary for
// every extracted document.
type VectorService struct {
	chunks     driven.ChunkStore
	vocabulary driven.VocabularyStore
	vectors    driven.VectorStore
	tokeniser  *tokeniser.Tokeniser
	workers    int
}

// NewVectorService creates a vector service.
func NewVectorService(
	chunks driven.ChunkStore,
	vocabulary driven.VocabularyStore,
	vectors driven.VectorStore,
	tok *tokeniser.Tokeniser,
	settings domain.VectorSettings,
) *VectorService {
	return &VectorService{
		chunks:     chunks,
		vocabulary: vocabulary,
		vectors:    vectors,
		tokeniser:  tok,
		workers:    settings.Workers,
	}
}

// Vectorise replaces the vector of every extracted document. A document
// that fails is logged and counted; the others still complete.
func (s *VectorService) Vectorise(ctx context.Context) (*driving.VectoriseReport, error) {
	if s.workers <= 0 {
		return nil, fmt.Errorf("%w: vector workers must be positive, got %d", domain.ErrInvalidInput, s.workers)
	}
	if ctx.Err() != nil {
		return &driving.VectoriseReport{Interrupted: true}, nil
	}

	vocab, err := s.vocabulary.Vocabulary(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	if len(vocab) == 0 {
		logger.Warn("Coverage vocabulary is empty; every vector will be zero")
	}
	words := make(map[string]struct{}, len(vocab))
	for _, v := range vocab {
		words[v.Word] = struct{}{}
	}

	extractions, err := s.chunks.Extractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}

	report := &driving.VectoriseReport{}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, e := range extractions {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		name := e.DocumentName
		g.Go(func() error {
			n, err := s.vectorise(ctx, name, words)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Failed to vectorise %s: %v", name, err)
				report.Failed++
				return nil
			}
			report.Documents++
			report.Entries += n
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("Vectorised %d documents: %d entries, %d failed",
		report.Documents, report.Entries, report.Failed)
	return report, nil
}

// vectorise counts one document's tokens and writes its vector. It
// returns the number of stored entries.
func (s *VectorService) vectorise(ctx context.Context, name string, words map[string]struct{}) (int, error) {
	chunks, err := s.chunks.DocumentChunks(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("read chunks: %w", err)
	}

	counts := make(map[string]int64)
	var tokens int64
	var stream tokeniser.Stream
	for _, c := range chunks {
		for _, segment := range stream.Push(name, c.Text) {
			tokens += s.tokeniser.Count(segment, counts)
		}
	}
	if tail := stream.Flush(); tail != "" {
		tokens += s.tokeniser.Count(tail, counts)
	}

	raw := make(map[string]float64)
	for word, n := range counts {
		if _, ok := words[word]; ok {
			raw[word] = float64(n)
		}
	}
	normalised := learn.Normalise(raw, vectorEpsilon)

	entries := make([]domain.VectorEntry, 0, len(raw))
	for word, n := range raw {
		entries = append(entries, domain.VectorEntry{
			DocumentName: name,
			Word:         word,
			Raw:          int64(n),
			Normalised:   normalised[word],
		})
	}

	totals := domain.DocumentTotals{DocumentName: name, Tokens: tokens}
	if err := s.vectors.ReplaceDocumentVector(ctx, totals, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
