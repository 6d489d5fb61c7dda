package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexicon/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexicon/internal/connectors/filesystem"
	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/normalisers"
	"github.com/custodia-labs/lexicon/internal/postprocessors"
	"github.com/custodia-labs/lexicon/internal/tokeniser"
)

func newTestPipeline(t *testing.T, store *sqlite.Store, labels *memory.LabelStore, folder string) *PipelineRunner {
	t.Helper()
	settings := domain.DefaultSettings()
	settings.Corpus.Folder = folder
	settings.Extraction.ChunkSize = 50
	settings.Extraction.Workers = 2
	settings.Coverage.Fraction = 1
	settings.Classifier.Seed = 7
	require.NoError(t, settings.Validate())

	tok := tokeniser.New()
	chunks := store.ChunkStore()
	return NewPipelineRunner(PipelineStages{
		Extraction: NewExtractionService(
			filesystem.NewScanner(),
			normalisers.NewDefaultRegistry(),
			postprocessors.NewBuilder(),
			chunks,
			store.FailureStore(),
			settings.Corpus.Folder,
			settings.Extraction,
			WithFlushInterval(20*time.Millisecond),
		),
		Index:       NewIndexService(chunks, store.DocumentIndex()),
		Aggregation: NewAggregationService(chunks, store.FrequencyStore(), tok, settings.Aggregation),
		Coverage:    NewCoverageService(store.FrequencyStore(), store.VocabularyStore(), store.VectorStore()),
		Vectors:     NewVectorService(chunks, store.VocabularyStore(), store.VectorStore(), tok, settings.Vectors),
		Classifier:  NewClassifierService(chunks, store.ModelStore(), labels, settings.Classifier),
		Maintenance: NewMaintenanceService(store.Maintenance()),
	}, settings)
}

func TestPipelineRunner_Run(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for name, text := range topicDocuments {
		writeNote(t, dir, name+".txt", text)
	}
	store := newTestStore(t)
	labels := memory.NewLabelStore(labelled("go", "go-a"))
	runner := newTestPipeline(t, store, labels, dir)

	report, err := runner.Run(ctx, driving.RunRequest{})
	require.NoError(t, err)

	assert.False(t, report.Interrupted)
	assert.Equal(t, 5, report.Extract.Extracted)
	assert.Equal(t, 5, report.Indexed)
	assert.Positive(t, report.Aggregate.Tokens)
	assert.Equal(t, report.Aggregate.Words, report.Coverage.Words)
	assert.Equal(t, 5, report.Vectors.Documents)
	require.Len(t, report.Classify.Topics, 1)
	assert.Equal(t, 1, report.Classify.Topics[0].Assigned)

	got, err := labels.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go-a", "go-b"}, got.Members("go"))

	first, err := store.Maintenance().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Documents)
	assert.Equal(t, 5, first.Vectors)
	assert.Equal(t, 1, first.Models)

	// A second run finds nothing new and recounts instead of adding.
	report, err = runner.Run(ctx, driving.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Extract.Skipped)
	assert.True(t, report.Classify.Topics[0].Skipped)

	second, err := store.Maintenance().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TotalWords, second.TotalWords)
	assert.Equal(t, first.Chunks, second.Chunks)
}

func TestPipelineRunner_Cancelled(t *testing.T) {
	store := newTestStore(t)
	runner := newTestPipeline(t, store, memory.NewLabelStore(domain.NewLabelSet()), t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, driving.RunRequest{})
	require.NoError(t, err)
	assert.True(t, report.Interrupted)
	assert.Nil(t, report.Extract)
}

func TestPipelineRunner_StopsAtFirstError(t *testing.T) {
	store := newTestStore(t)
	runner := newTestPipeline(t, store, memory.NewLabelStore(domain.NewLabelSet()), t.TempDir())

	report, err := runner.Run(context.Background(), driving.RunRequest{Folder: "/does/not/exist"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, report.Aggregate)
}

func TestMaintenanceService(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedGardenChunks(t, store)
	service := NewMaintenanceService(store.Maintenance())

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 2, stats.Extractions)

	assert.ErrorIs(t, service.Reset(ctx), domain.ErrInvalidInput)
	require.NoError(t, service.Reset(ctx, domain.TableChunks))

	stats, err = service.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.Extractions)
}
