package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

func TestFrequencyStore_AddIsAdditive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	fs := store.FrequencyStore()

	require.NoError(t, fs.AddFrequencies(ctx, map[string]int64{"go": 2, "rust": 1}))
	require.NoError(t, fs.AddFrequencies(ctx, map[string]int64{"go": 3, "zig": 4}))

	page, err := fs.FrequencyPage(ctx, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.WordFrequency{
		{Word: "go", Frequency: 5},
		{Word: "zig", Frequency: 4},
		{Word: "rust", Frequency: 1},
	}, page)

	total, err := fs.TotalFrequency(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestFrequencyStore_KeysetPaging(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	fs := store.FrequencyStore()

	require.NoError(t, fs.AddFrequencies(ctx, map[string]int64{"a": 3, "b": 3, "c": 3, "d": 1, "e": 5}))

	var all []domain.WordFrequency
	var after *domain.WordFrequency
	for {
		page, err := fs.FrequencyPage(ctx, after, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		last := page[len(page)-1]
		after = &last
	}

	words := make([]string, len(all))
	for i, wf := range all {
		words[i] = wf.Word
	}
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, words)
}

func TestFrequencyStore_DeleteAbove(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	fs := store.FrequencyStore()

	require.NoError(t, fs.AddFrequencies(ctx, map[string]int64{"the": 90, "graph": 6, "node": 4}))

	removed, err := fs.DeleteAbove(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	total, err := fs.TotalFrequency(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestVocabularyStore_Replace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	vs := store.VocabularyStore()

	require.NoError(t, vs.ReplaceVocabulary(ctx, []domain.VocabularyEntry{{Word: "old", Frequency: 1}}))
	require.NoError(t, vs.ReplaceVocabulary(ctx, []domain.VocabularyEntry{
		{Word: "graph", Frequency: 2},
		{Word: "node", Frequency: 7},
	}))

	vocab, err := vs.Vocabulary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.VocabularyEntry{
		{Word: "node", Frequency: 7},
		{Word: "graph", Frequency: 2},
	}, vocab)
}

func TestVectorStore_ReplaceAndUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.ReplaceDocumentVector(ctx, domain.DocumentTotals{DocumentName: "a", Tokens: 10},
		[]domain.VectorEntry{
			{Word: "graph", Raw: 3, Normalised: 0.6},
			{Word: "node", Raw: 4, Normalised: 0.8},
			{Word: "edge", Raw: 0},
		}))
	require.NoError(t, vs.ReplaceDocumentVector(ctx, domain.DocumentTotals{DocumentName: "a", Tokens: 8},
		[]domain.VectorEntry{{Word: "graph", Raw: 5, Normalised: 1}}))

	entries, err := vs.VectorEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1, "replacement drops previous entries")
	assert.Equal(t, int64(5), entries[0].Raw)

	totals, err := vs.DocumentTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentTotals{{DocumentName: "a", Tokens: 8}}, totals)

	entries[0].TFIDF = 0.42
	require.NoError(t, vs.UpdateTFIDF(ctx, entries))

	entries, err = vs.VectorEntries(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.42, entries[0].TFIDF, 1e-12)
}

func TestVectorStore_ZeroVector(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	vs := store.VectorStore()

	require.NoError(t, vs.ReplaceDocumentVector(ctx, domain.DocumentTotals{DocumentName: "empty"}, nil))

	totals, err := vs.DocumentTotals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Zero(t, totals[0].Tokens)
}

func TestModelStore(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	ms := store.ModelStore()

	has, err := ms.HasModel(ctx, "go")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = ms.GetModel(ctx, "go")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, ms.SaveModel(ctx, &domain.TopicModel{
		Topic: "go", Payload: []byte(`{"x":1}`), Positives: 2, TrainedAt: time.Now(),
	}))
	require.NoError(t, ms.SaveModel(ctx, &domain.TopicModel{
		Topic: "go", Payload: []byte(`{"x":2}`), Positives: 3, TrainedAt: time.Now(),
	}))

	m, err := ms.GetModel(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":2}`), m.Payload)
	assert.Equal(t, 3, m.Positives)

	models, err := ms.ListModels(ctx)
	require.NoError(t, err)
	assert.Len(t, models, 1)

	require.NoError(t, ms.DeleteModels(ctx))
	has, err = ms.HasModel(ctx, "go")
	require.NoError(t, err)
	assert.False(t, has)
}
