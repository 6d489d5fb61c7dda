package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure PipelineRunner implements the interface.
var _ driving.PipelineRunner = (*PipelineRunner)(nil)

// PipelineStages are the services a full run drives, in order.
type PipelineStages struct {
	Extraction  driving.ExtractionService
	Index       driving.IndexService
	Aggregation driving.AggregationService
	Coverage    driving.CoverageService
	Vectors     driving.VectorService
	Classifier  driving.ClassifierService
	Maintenance driving.MaintenanceService
}

// PipelineRunner runs every stage in order, stopping at the first error.
type PipelineRunner struct {
	stages   PipelineStages
	settings domain.Settings
}

// NewPipelineRunner creates a pipeline runner.
func NewPipelineRunner(stages PipelineStages, settings domain.Settings) *PipelineRunner {
	return &PipelineRunner{stages: stages, settings: settings}
}

// Run extracts new documents and recomputes every derived table.
//
// Word frequencies are reset and counted over every chunk, so repeated
// runs leave them unchanged until new documents arrive. Cancellation is
// checked between stages; the stages finished so far are reported.
func (r *PipelineRunner) Run(ctx context.Context, req driving.RunRequest) (*driving.RunReport, error) {
	report := &driving.RunReport{}

	steps := []struct {
		name string
		run  func() error
	}{
		{"Extract", func() error {
			rep, err := r.stages.Extraction.Extract(ctx, driving.ExtractRequest{Folder: req.Folder})
			report.Extract = rep
			if err == nil && rep.Interrupted {
				report.Interrupted = true
			}
			return err
		}},
		{"Index", func() error {
			n, err := r.stages.Index.Rebuild(ctx)
			report.Indexed = n
			return err
		}},
		{"Aggregate", func() error {
			if err := r.stages.Maintenance.Reset(ctx, domain.TableFrequencies); err != nil {
				return err
			}
			rep, err := r.stages.Aggregation.Aggregate(ctx, domain.ChunkRange{})
			report.Aggregate = rep
			if err == nil && rep.Interrupted {
				report.Interrupted = true
			}
			return err
		}},
		{"Prune", func() error {
			share := r.settings.Aggregation.PruneShare
			if share <= 0 {
				logger.Debug("Pruning disabled")
				return nil
			}
			n, err := r.stages.Aggregation.Prune(ctx, share)
			report.Pruned = n
			return err
		}},
		{"Coverage", func() error {
			rep, err := r.stages.Coverage.SelectVocabulary(ctx, r.settings.Coverage.Fraction)
			report.Coverage = rep
			return err
		}},
		{"Vectorise", func() error {
			rep, err := r.stages.Vectors.Vectorise(ctx)
			report.Vectors = rep
			if err == nil && rep.Interrupted {
				report.Interrupted = true
			}
			return err
		}},
		{"TF-IDF", func() error {
			_, err := r.stages.Coverage.ComputeTFIDF(ctx)
			return err
		}},
		{"Classify", func() error {
			rep, err := r.stages.Classifier.Run(ctx, driving.ClassifyRequest{Retrain: req.Retrain})
			report.Classify = rep
			return err
		}},
	}

	for _, step := range steps {
		if report.Interrupted || ctx.Err() != nil {
			report.Interrupted = true
			logger.Warn("Pipeline interrupted before %s", step.name)
			return report, nil
		}
		logger.Section(step.name)
		if err := step.run(); err != nil {
			return report, fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return report, nil
}
