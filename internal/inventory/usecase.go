package inventory

import (
	"context"

	"github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
)

type UseCase interface {
	RunRestockSweep(ctx context.Context, threshold, increment int) (*model.RestockResult, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
