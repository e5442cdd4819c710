package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
	"github.com/fekuna/omnipos-crm-service/internal/customer"
	"github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
	"github.com/fekuna/omnipos-crm-service/pkg/search"
)

const (
	indexName = "customers"

	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

var phonePattern = regexp.MustCompile(`^(\+?\d{10,15}|\d{3}-\d{3}-\d{4})$`)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"email": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"phone": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

// SearchIndex is the subset of the Elasticsearch client the usecase needs.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

type customerUseCase struct {
	repo   customer.Repository
	es     SearchIndex
	logger logger.ZapLogger
}

// NewCustomerUseCase builds the usecase. es may be nil, in which case search
// goes straight to the database.
func NewCustomerUseCase(repo customer.Repository, es SearchIndex, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{
		repo:   repo,
		es:     es,
		logger: log,
	}
}

// ValidPhone reports whether phone is in an accepted format. Empty is not valid;
// callers skip the check when no phone was given.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func (uc *customerUseCase) CreateCustomer(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error) {
	const op = "customer.CreateCustomer"

	unique, err := uc.repo.IsEmailUnique(ctx, input.Email)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if !unique {
		return nil, apperr.New(op, apperr.KindDuplicateEmail, "Email already exists.")
	}
	if input.Phone != "" && !ValidPhone(input.Phone) {
		return nil, apperr.New(op, apperr.KindInvalidPhoneFormat, "Invalid phone format.")
	}

	c, err := uc.save(ctx, input)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.New(op, apperr.KindDuplicateEmail, "Email already exists.")
		}
		return nil, apperr.Internal(op, err)
	}
	return c, nil
}

func (uc *customerUseCase) BulkCreateCustomers(ctx context.Context, inputs []dto.CreateCustomerInput) ([]model.Customer, []string, error) {
	customers := []model.Customer{}
	errs := []string{}

	for i := range inputs {
		input := &inputs[i]
		entry := i + 1

		unique, err := uc.repo.IsEmailUnique(ctx, input.Email)
		if err != nil {
			uc.logger.Error("bulk create: email check failed", zap.Int("entry", entry), zap.Error(err))
			errs = append(errs, fmt.Sprintf("Entry %d: %s", entry, apperr.Public(err)))
			continue
		}
		if !unique {
			errs = append(errs, fmt.Sprintf("Entry %d: Email '%s' already exists.", entry, input.Email))
			continue
		}
		if input.Phone != "" && !ValidPhone(input.Phone) {
			errs = append(errs, fmt.Sprintf("Entry %d: Invalid phone format: %s", entry, input.Phone))
			continue
		}

		c, err := uc.save(ctx, input)
		if err != nil {
			if database.IsUniqueViolation(err) {
				errs = append(errs, fmt.Sprintf("Entry %d: Email '%s' already exists.", entry, input.Email))
				continue
			}
			uc.logger.Error("bulk create: insert failed", zap.Int("entry", entry), zap.Error(err))
			errs = append(errs, fmt.Sprintf("Entry %d: %s", entry, apperr.Public(err)))
			continue
		}
		customers = append(customers, *c)
	}

	return customers, errs, nil
}

func (uc *customerUseCase) save(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error) {
	now := time.Now().UTC()
	c := &model.Customer{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), c)

	return c, nil
}

func (uc *customerUseCase) syncToElastic(ctx context.Context, c *model.Customer) {
	if uc.es == nil {
		return
	}
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	if err := uc.es.Index(ctx, indexName, c.ID, c); err != nil {
		uc.logger.Error("failed to index customer", zap.String("customer_id", c.ID), zap.Error(err))
	}
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	const op = "customer.GetCustomer"

	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if c == nil {
		return nil, apperr.New(op, apperr.KindNotFound, "Customer not found.")
	}
	return c, nil
}

func (uc *customerUseCase) GetCustomers(ctx context.Context, ids []string) ([]model.Customer, error) {
	items, err := uc.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("customer.GetCustomers", err)
	}
	return items, nil
}

func (uc *customerUseCase) ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error) {
	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.Internal("customer.ListCustomers", err)
	}
	return items, count, nil
}

// SearchCustomers queries the search index and falls back to a database
// substring match when the index is unavailable.
func (uc *customerUseCase) SearchCustomers(ctx context.Context, query string, limit int) ([]model.Customer, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if query != "" && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     query,
					"fields":    []string{"name^3", "email"},
					"fuzziness": "AUTO",
				},
			},
			"size": limit,
		}

		res, err := uc.es.Search(ctx, indexName, q)
		if err == nil {
			customers := make([]model.Customer, 0, len(res.Hits.Hits))
			for _, hit := range res.Hits.Hits {
				var c model.Customer
				if err := json.Unmarshal(hit.Source, &c); err == nil {
					customers = append(customers, c)
				}
			}
			return customers, nil
		}
		uc.logger.Warn("ES search failed, falling back to DB", zap.Error(err))
	}

	items, _, err := uc.repo.FindAll(ctx, &dto.CustomerFilters{
		SearchQuery: query,
		OrderBy:     []string{"name"},
		Limit:       limit,
	})
	if err != nil {
		return nil, apperr.Internal("customer.SearchCustomers", err)
	}
	return items, nil
}

func (uc *customerUseCase) CountCustomers(ctx context.Context) (int, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("customer.CountCustomers", err)
	}
	return n, nil
}
