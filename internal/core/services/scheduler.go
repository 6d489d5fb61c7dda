package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.PipelineScheduler = (*Scheduler)(nil)

// Scheduler repeats full pipeline runs at a fixed interval.
type Scheduler struct {
	runner   driving.PipelineRunner
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler that runs runner every interval.
func NewScheduler(runner driving.PipelineRunner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Start runs the pipeline immediately and then every interval until ctx is
// cancelled or Stop is called. A failed run is passed to onReport with its
// error and the schedule continues. Start blocks.
func (s *Scheduler) Start(ctx context.Context, req driving.RunRequest, onReport func(*driving.RunReport, error)) error {
	if s.interval <= 0 {
		return fmt.Errorf("%w: schedule interval must be positive", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("schedule: %w", domain.ErrStageInProgress)
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		report, err := s.runner.Run(ctx, req)
		if onReport != nil {
			onReport(report, err)
		}
		if err != nil {
			logger.Error("Scheduled run failed: %v", err)
		}
		logger.Info("Next run in %s", s.interval)

		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends a running schedule after its current run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}
