package customer

import (
	"context"

	"github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
)

type UseCase interface {
	CreateCustomer(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error)
	// BulkCreateCustomers saves every valid entry and reports the rest by position.
	BulkCreateCustomers(ctx context.Context, inputs []dto.CreateCustomerInput) ([]model.Customer, []string, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetCustomers(ctx context.Context, ids []string) ([]model.Customer, error)
	ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]model.Customer, error)
	CountCustomers(ctx context.Context) (int, error)
}
