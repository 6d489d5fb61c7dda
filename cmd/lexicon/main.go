// Command lexicon runs the personal knowledge pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lexicon/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexicon/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexicon/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexicon/internal/connectors/filesystem"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/core/services"
	"github.com/custodia-labs/lexicon/internal/normalisers"
	"github.com/custodia-labs/lexicon/internal/postprocessors"
	"github.com/custodia-labs/lexicon/internal/retry"
	"github.com/custodia-labs/lexicon/internal/tokeniser"
)

func main() {
	// A missing .env is fine; it only supplies LEXICON_HOME and friends.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: reading .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetBootstrap(bootstrap)
	err := cli.Execute(ctx)
	if closeErr := cli.Close(); err == nil {
		err = closeErr
	}
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap wires every service over the data directory home.
func bootstrap(home string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(home, "data"), sqlite.WithRetryPolicy(retry.Policy{
		MaxAttempts: settings.Retry.MaxAttempts,
		Delay:       settings.Retry.Delay,
	}))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	labelsPath := settings.Classifier.LabelsFile
	if !filepath.IsAbs(labelsPath) {
		labelsPath = filepath.Join(home, labelsPath)
	}
	labels := file.NewLabelStore(labelsPath)

	tok := tokeniser.New()
	chunks := store.ChunkStore()

	extraction := services.NewExtractionService(
		filesystem.NewScanner(),
		normalisers.NewDefaultRegistry(),
		postprocessors.NewBuilder(),
		chunks,
		store.FailureStore(),
		settings.Corpus.Folder,
		settings.Extraction,
		services.WithWatcher(filesystem.NewWatcher()),
	)
	index := services.NewIndexService(chunks, store.DocumentIndex())
	aggregation := services.NewAggregationService(chunks, store.FrequencyStore(), tok, settings.Aggregation)
	coverage := services.NewCoverageService(store.FrequencyStore(), store.VocabularyStore(), store.VectorStore())
	vectors := services.NewVectorService(chunks, store.VocabularyStore(), store.VectorStore(), tok, settings.Vectors)
	classifier := services.NewClassifierService(chunks, store.ModelStore(), labels, settings.Classifier)
	maintenance := services.NewMaintenanceService(store.Maintenance())

	pipeline := services.NewPipelineRunner(services.PipelineStages{
		Extraction:  extraction,
		Index:       index,
		Aggregation: aggregation,
		Coverage:    coverage,
		Vectors:     vectors,
		Classifier:  classifier,
		Maintenance: maintenance,
	}, *settings)

	newScheduler := func(interval time.Duration) driving.PipelineScheduler {
		return services.NewScheduler(pipeline, interval)
	}

	return &cli.Services{
		Extraction:   extraction,
		Index:        index,
		Aggregation:  aggregation,
		Coverage:     coverage,
		Vectors:      vectors,
		Classifier:   classifier,
		Settings:     settingsService,
		Maintenance:  maintenance,
		Pipeline:     pipeline,
		NewScheduler: newScheduler,
		Close:        store.Close,
	}, nil
}
