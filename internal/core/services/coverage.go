package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/learn"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure CoverageService implements the interface.
var _ driving.CoverageService = (*CoverageService)(nil)

// vocabularyPageSize is the number of frequency rows read per query.
const vocabularyPageSize = 1000

// CoverageService selects the coverage vocabulary and weights the stored
// document vectors by TF-IDF.
type CoverageService struct {
	frequencies driven.FrequencyStore
	vocabulary  driven.VocabularyStore
	vectors     driven.VectorStore
	pageSize    int
}

// NewCoverageService creates a coverage service.
func NewCoverageService(frequencies driven.FrequencyStore, vocabulary driven.VocabularyStore, vectors driven.VectorStore) *CoverageService {
	return &CoverageService{
		frequencies: frequencies,
		vocabulary:  vocabulary,
		vectors:     vectors,
		pageSize:    vocabularyPageSize,
	}
}

// SelectVocabulary keeps the shortest prefix of words, by descending
// frequency, whose occurrences reach fraction of the total.
func (s *CoverageService) SelectVocabulary(ctx context.Context, fraction float64) (*driving.CoverageReport, error) {
	if fraction <= 0 || fraction > 1 || math.IsNaN(fraction) {
		return nil, fmt.Errorf("%w: coverage fraction must be within (0, 1], got %g", domain.ErrInvalidInput, fraction)
	}

	total, err := s.frequencies.TotalFrequency(ctx)
	if err != nil {
		return nil, fmt.Errorf("total frequency: %w", err)
	}
	target := fraction * float64(total)

	var (
		selected []domain.VocabularyEntry
		covered  int64
		after    *domain.WordFrequency
	)
	for total > 0 && float64(covered) < target {
		page, err := s.frequencies.FrequencyPage(ctx, after, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("read frequencies: %w", err)
		}
		for _, wf := range page {
			selected = append(selected, domain.VocabularyEntry{Word: wf.Word, Frequency: wf.Frequency})
			covered += wf.Frequency
			if float64(covered) >= target {
				break
			}
		}
		if len(page) < s.pageSize {
			break
		}
		last := page[len(page)-1]
		after = &last
	}

	if err := s.vocabulary.ReplaceVocabulary(ctx, selected); err != nil {
		return nil, fmt.Errorf("save vocabulary: %w", err)
	}

	report := &driving.CoverageReport{Words: len(selected), Covered: covered, Total: total}
	if total > 0 {
		report.Fraction = float64(covered) / float64(total)
	}
	logger.Info("Selected %d words covering %.1f%% of %d occurrences",
		report.Words, report.Fraction*100, report.Total)
	return report, nil
}

// ComputeTFIDF weights every stored vector entry and returns the
// resulting word by document matrix.
//
// tf is the raw count over the document's token total and idf is
// log10((N+1)/(df+1))+1, where N counts vectorised documents and df
// those containing the word.
func (s *CoverageService) ComputeTFIDF(ctx context.Context) (*domain.TermMatrix, error) {
	entries, err := s.vectors.VectorEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	totals, err := s.vectors.DocumentTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document totals: %w", err)
	}

	tokens := make(map[string]int64, len(totals))
	for _, t := range totals {
		tokens[t.DocumentName] = t.Tokens
	}
	df := make(map[string]int)
	for _, e := range entries {
		if e.Raw > 0 {
			df[e.Word]++
		}
	}

	n := float64(len(totals))
	for i := range entries {
		e := &entries[i]
		total := tokens[e.DocumentName]
		if total <= 0 || e.Raw <= 0 {
			e.TFIDF = 0
			continue
		}
		tf := float64(e.Raw) / float64(total)
		idf := math.Log10((n+1)/float64(df[e.Word]+1)) + 1
		e.TFIDF = tf * idf
	}

	if err := s.vectors.UpdateTFIDF(ctx, entries); err != nil {
		return nil, fmt.Errorf("save tfidf: %w", err)
	}
	matrix := domain.NewTermMatrix(entries, func(e domain.VectorEntry) float64 { return e.TFIDF })
	logger.Info("Weighted %d entries over %d documents and %d words",
		len(entries), len(matrix.Documents), len(matrix.Words))
	return matrix, nil
}

// Similar returns up to k documents closest to name by cosine over the
// stored TF-IDF weights. Documents with no overlap are not returned.
func (s *CoverageService) Similar(ctx context.Context, name string, k int) ([]driving.SimilarDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	entries, err := s.vectors.VectorEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}

	words := make(map[string]int)
	columns := make(map[string]map[int]float64)
	var names []string
	for _, e := range entries {
		idx, ok := words[e.Word]
		if !ok {
			idx = len(words)
			words[e.Word] = idx
		}
		col, ok := columns[e.DocumentName]
		if !ok {
			col = make(map[int]float64)
			columns[e.DocumentName] = col
			names = append(names, e.DocumentName)
		}
		col[idx] = e.TFIDF
	}

	target := -1
	rows := make([]learn.Sparse, len(names))
	for i, doc := range names {
		rows[i] = learn.NewSparse(columns[doc])
		if doc == name {
			target = i
		}
	}
	if target < 0 {
		return nil, fmt.Errorf("document %s: %w", name, domain.ErrNotFound)
	}

	nearest := learn.Nearest(rows, target, k)
	similar := make([]driving.SimilarDocument, len(nearest))
	for i, nb := range nearest {
		similar[i] = driving.SimilarDocument{Name: names[nb.Index], Similarity: nb.Similarity}
	}
	return similar, nil
}
