package driving

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// MaintenanceService resets stage outputs and reports store counts.
type MaintenanceService interface {
	Reset(ctx context.Context, tables ...domain.Table) error
	Stats(ctx context.Context) (*domain.Stats, error)
}

// PipelineRunner runs every stage in order.
type PipelineRunner interface {
	Run(ctx context.Context, req RunRequest) (*RunReport, error)
}

// RunRequest configures a full pipeline run.
type RunRequest struct {
	Folder  string
	Retrain bool
}

// RunReport collects the report of each stage.
type RunReport struct {
	Extract   *ExtractReport
	Indexed   int
	Aggregate *AggregateReport
	Pruned    int
	Coverage  *CoverageReport
	Vectors   *VectoriseReport
	Classify  *ClassifyReport

	// Interrupted is set when cancellation stopped the run between stages.
	Interrupted bool
}

// PipelineScheduler repeats pipeline runs at a fixed interval.
type PipelineScheduler interface {
	// Start runs the pipeline now and then on every tick until ctx is
	// cancelled or Stop is called. It blocks.
	Start(ctx context.Context, req RunRequest, onReport func(*RunReport, error)) error
	Stop()
}
