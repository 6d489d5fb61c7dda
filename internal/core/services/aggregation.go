package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
	"github.com/custodia-labs/lexicon/internal/tokeniser"
)

// Ensure AggregationService implements the interface.
var _ driving.AggregationService = (*AggregationService)(nil)

// AggregationService counts stemmed words across stored chunks.
type AggregationService struct {
	chunks      driven.ChunkStore
	frequencies driven.FrequencyStore
	tokeniser   *tokeniser.Tokeniser
	batchSize   int

	running atomic.Bool
}

// NewAggregationService creates an aggregation service.
func NewAggregationService(
	chunks driven.ChunkStore,
	frequencies driven.FrequencyStore,
	tok *tokeniser.Tokeniser,
	settings domain.AggregationSettings,
) *AggregationService {
	return &AggregationService{
		chunks:      chunks,
		frequencies: frequencies,
		tokeniser:   tok,
		batchSize:   settings.BatchSize,
	}
}

// Aggregate streams the chunks in r by ascending id and adds their word
// counts to the stored frequencies in a single upsert. Running it twice
// over the same range counts every word twice.
//
// Ranges are aligned to whole documents so a word split across chunks is
// never counted in two halves: a document that starts at or before
// r.AfterID is left to the range that started it, and a document still
// open at r.UpToID is read to its end. LastID reports where the next range
// should start.
//
// A cancelled run writes nothing and reports Interrupted, so the range
// can be aggregated again without double counting.
func (s *AggregationService) Aggregate(ctx context.Context, r domain.ChunkRange) (*driving.AggregateReport, error) {
	if r.AfterID < 0 || (r.UpToID > 0 && r.UpToID <= r.AfterID) {
		return nil, fmt.Errorf("%w: empty chunk range (%d, %d]", domain.ErrInvalidInput, r.AfterID, r.UpToID)
	}
	if s.batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, s.batchSize)
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("aggregation: %w", domain.ErrStageInProgress)
	}
	defer s.running.Store(false)

	interrupted := func(after int64) (*driving.AggregateReport, error) {
		logger.Warn("Aggregation interrupted after chunk %d; nothing written", after)
		return &driving.AggregateReport{LastID: r.AfterID, Interrupted: true}, nil
	}

	// skipDoc owns chunk r.AfterID; its remaining chunks belong to the
	// range that started it.
	skipDoc, err := s.documentAt(ctx, r.AfterID)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(r.AfterID)
		}
		return nil, err
	}

	report := &driving.AggregateReport{LastID: r.AfterID}
	counts := make(map[string]int64)
	var stream tokeniser.Stream
	openDoc := ""

	after := r.AfterID
	for {
		if ctx.Err() != nil {
			return interrupted(after)
		}

		page, err := s.chunks.ChunksAfter(ctx, after, s.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return interrupted(after)
			}
			return nil, fmt.Errorf("read chunks after %d: %w", after, err)
		}

		done := len(page) < s.batchSize
		for _, c := range page {
			if skipDoc != "" {
				if c.DocumentName == skipDoc {
					logger.Debug("Skipping chunk %d of %s, started before the range", c.ID, skipDoc)
					report.LastID = c.ID
					after = c.ID
					continue
				}
				skipDoc = ""
			}
			if !r.Contains(c.ID) && c.DocumentName != openDoc {
				done = true
				break
			}
			for _, segment := range stream.Push(c.DocumentName, c.Text) {
				report.Tokens += s.tokeniser.Count(segment, counts)
			}
			openDoc = c.DocumentName
			report.Chunks++
			report.LastID = c.ID
			after = c.ID
		}
		logger.Debug("Aggregated through chunk %d: %d chunks, %d words", after, report.Chunks, len(counts))
		if done {
			break
		}
	}
	if tail := stream.Flush(); tail != "" {
		report.Tokens += s.tokeniser.Count(tail, counts)
	}

	if err := s.frequencies.AddFrequencies(ctx, counts); err != nil {
		return nil, fmt.Errorf("save frequencies: %w", err)
	}
	report.Words = len(counts)

	logger.Info("Aggregated %d chunks: %d tokens, %d distinct words, last chunk %d",
		report.Chunks, report.Tokens, report.Words, report.LastID)
	return report, nil
}

// documentAt returns the document owning chunk id, or "" when id is zero
// or no such chunk exists.
func (s *AggregationService) documentAt(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", nil
	}
	page, err := s.chunks.ChunksAfter(ctx, id-1, 1)
	if err != nil {
		return "", fmt.Errorf("read chunk %d: %w", id, err)
	}
	if len(page) == 0 || page[0].ID != id {
		return "", nil
	}
	return page[0].DocumentName, nil
}

// Prune removes every word whose frequency exceeds share of the total.
func (s *AggregationService) Prune(ctx context.Context, share float64) (int, error) {
	if share <= 0 || share > 1 {
		return 0, fmt.Errorf("%w: prune share must be within (0, 1], got %g", domain.ErrInvalidInput, share)
	}

	total, err := s.frequencies.TotalFrequency(ctx)
	if err != nil {
		return 0, fmt.Errorf("total frequency: %w", err)
	}
	threshold := int64(share * float64(total))

	removed, err := s.frequencies.DeleteAbove(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("prune frequencies: %w", err)
	}
	logger.Info("Pruned %d words above %d of %d occurrences", removed, threshold, total)
	return removed, nil
}
