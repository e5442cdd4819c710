package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	// ListOrders returns orders with Products populated.
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	CountOrders(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}
