package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/order/dto"
)

type Repository interface {
	// CreateWithProducts stores the order and its product links atomically.
	CreateWithProducts(ctx context.Context, order *model.Order, productIDs []string) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	// FindProducts returns the products of each order keyed by order id.
	FindProducts(ctx context.Context, orderIDs []string) (map[string][]model.Product, error)

	Count(ctx context.Context) (int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}
