package domain

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Settings is the validated configuration of every pipeline stage.
type Settings struct {
	Corpus      CorpusSettings
	Extraction  ExtractionSettings
	Aggregation AggregationSettings
	Coverage    CoverageSettings
	Vectors     VectorSettings
	Classifier  ClassifierSettings
	Retry       RetrySettings
}

// CorpusSettings locates the source folder.
type CorpusSettings struct {
	Folder string
}

// ExtractionSettings configures the extraction pipeline.
type ExtractionSettings struct {
	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// Workers is the number of concurrent extraction producers.
	Workers int

	// QueueSize bounds the producer to writer queue.
	QueueSize int

	// FlushEvery is the number of queued chunks per write batch.
	FlushEvery int
}

// AggregationSettings configures the frequency aggregator.
type AggregationSettings struct {
	// BatchSize is the number of chunks read per query.
	BatchSize int

	// PruneShare removes words above this share of the total. Zero disables.
	PruneShare float64
}

// CoverageSettings configures vocabulary selection.
type CoverageSettings struct {
	Fraction float64
}

// VectorSettings configures the per-document vectoriser.
type VectorSettings struct {
	Workers int
}

// ClassifierSettings configures the topic classifier.
type ClassifierSettings struct {
	HighThreshold float64
	LowThreshold  float64
	Neighbours    int
	MaxFeatures   int
	RidgeAlpha    float64

	// Seed fixes the topic shuffle. Zero seeds from the clock.
	Seed int64

	// LabelsFile is the label set path, relative to the data directory
	// unless absolute.
	LabelsFile string
}

// RetrySettings configures store lock retries.
type RetrySettings struct {
	MaxAttempts int
	Delay       time.Duration
}

// Default values for settings.
const (
	DefaultChunkSize     = 1000
	DefaultQueueSize     = 256
	DefaultFlushEvery    = 500
	DefaultBatchSize     = 1000
	DefaultCoverage      = 0.9
	DefaultVectorWorkers = 4
	DefaultHighThreshold = 0.7
	DefaultLowThreshold  = 0.3
	DefaultNeighbours    = 5
	DefaultMaxFeatures   = 5000
	DefaultRidgeAlpha    = 0.1
	DefaultLabelsFile    = "labels.yaml"
	DefaultRetryAttempts = 300
	DefaultRetryDelay    = 2 * time.Second
)

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	return Settings{
		Extraction: ExtractionSettings{
			ChunkSize:  DefaultChunkSize,
			Workers:    runtime.NumCPU(),
			QueueSize:  DefaultQueueSize,
			FlushEvery: DefaultFlushEvery,
		},
		Aggregation: AggregationSettings{
			BatchSize: DefaultBatchSize,
		},
		Coverage: CoverageSettings{
			Fraction: DefaultCoverage,
		},
		Vectors: VectorSettings{
			Workers: DefaultVectorWorkers,
		},
		Classifier: ClassifierSettings{
			HighThreshold: DefaultHighThreshold,
			LowThreshold:  DefaultLowThreshold,
			Neighbours:    DefaultNeighbours,
			MaxFeatures:   DefaultMaxFeatures,
			RidgeAlpha:    DefaultRidgeAlpha,
			LabelsFile:    DefaultLabelsFile,
		},
		Retry: RetrySettings{
			MaxAttempts: DefaultRetryAttempts,
			Delay:       DefaultRetryDelay,
		},
	}
}

// Validate checks every setting and reports all problems at once.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...))
		}
	}

	check(s.Extraction.ChunkSize > 0, "extraction.chunk_size must be positive, got %d", s.Extraction.ChunkSize)
	check(s.Extraction.Workers > 0, "extraction.workers must be positive, got %d", s.Extraction.Workers)
	check(s.Extraction.QueueSize > 0, "extraction.queue_size must be positive, got %d", s.Extraction.QueueSize)
	check(s.Extraction.FlushEvery > 0, "extraction.flush_every must be positive, got %d", s.Extraction.FlushEvery)
	check(s.Aggregation.BatchSize > 0, "aggregation.batch_size must be positive, got %d", s.Aggregation.BatchSize)
	check(s.Aggregation.PruneShare >= 0 && s.Aggregation.PruneShare <= 1,
		"aggregation.prune_share must be within [0, 1], got %g", s.Aggregation.PruneShare)
	check(s.Coverage.Fraction > 0 && s.Coverage.Fraction <= 1,
		"coverage.fraction must be within (0, 1], got %g", s.Coverage.Fraction)
	check(s.Vectors.Workers > 0, "vectors.workers must be positive, got %d", s.Vectors.Workers)
	check(s.Classifier.LowThreshold < s.Classifier.HighThreshold,
		"classifier.low_threshold (%g) must be below classifier.high_threshold (%g)",
		s.Classifier.LowThreshold, s.Classifier.HighThreshold)
	check(s.Classifier.Neighbours > 0, "classifier.neighbours must be positive, got %d", s.Classifier.Neighbours)
	check(s.Classifier.MaxFeatures > 0, "classifier.max_features must be positive, got %d", s.Classifier.MaxFeatures)
	check(s.Classifier.RidgeAlpha > 0, "classifier.ridge_alpha must be positive, got %g", s.Classifier.RidgeAlpha)
	check(s.Classifier.LabelsFile != "", "classifier.labels_file must not be empty")
	check(s.Retry.MaxAttempts > 0, "retry.max_attempts must be positive, got %d", s.Retry.MaxAttempts)
	check(s.Retry.Delay >= 0, "retry.delay must not be negative, got %s", s.Retry.Delay)

	return errors.Join(errs...)
}
