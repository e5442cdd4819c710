package customer

import (
	"context"

	"github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error)
	FindAll(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	Count(ctx context.Context) (int, error)

	IsEmailUnique(ctx context.Context, email string) (bool, error)
}
