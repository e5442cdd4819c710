package inventory

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
)

// ErrVersionConflict is returned when a product changed between read and write.
var ErrVersionConflict = errors.New("product version conflict")

type Repository interface {
	// FindBelowThreshold returns products with stock < threshold ordered by id.
	FindBelowThreshold(ctx context.Context, threshold int) ([]model.Product, error)

	// RestockWithMovement writes the new stock and the audit row in one
	// transaction, provided the stored version still equals expectedVersion.
	RestockWithMovement(ctx context.Context, p *model.Product, expectedVersion int, movement *model.StockMovement) error

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
