package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService resets stage outputs and reports store counts.
type MaintenanceService struct {
	store driven.Maintenance
}

// NewMaintenanceService creates a maintenance service.
func NewMaintenanceService(store driven.Maintenance) *MaintenanceService {
	return &MaintenanceService{store: store}
}

// Reset clears the given tables in one transaction.
func (s *MaintenanceService) Reset(ctx context.Context, tables ...domain.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("%w: no tables given", domain.ErrInvalidInput)
	}
	if err := s.store.Reset(ctx, tables...); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	logger.Info("Reset %v", tables)
	return nil
}

// Stats returns the row counts of every stage.
func (s *MaintenanceService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.store.Stats(ctx)
}
