package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
	"github.com/fekuna/omnipos-crm-service/internal/customer"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/order"
	"github.com/fekuna/omnipos-crm-service/internal/order/dto"
	"github.com/fekuna/omnipos-crm-service/internal/product"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers domain events; *broker.KafkaProducer satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type orderUseCase struct {
	repo      order.Repository
	customers customer.Repository
	products  product.Repository
	publisher EventPublisher
	logger    logger.ZapLogger
}

// NewOrderUseCase builds the usecase. publisher may be nil.
func NewOrderUseCase(repo order.Repository, customers customer.Repository, products product.Repository, publisher EventPublisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		customers: customers,
		products:  products,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	const op = "order.CreateOrder"

	c, err := uc.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if c == nil {
		return nil, apperr.New(op, apperr.KindInvalidReference, "Invalid customer ID.")
	}

	productIDs := dedupe(input.ProductIDs)
	if len(productIDs) == 0 {
		return nil, apperr.New(op, apperr.KindInvalidArgument, "At least one product must be selected.")
	}

	products, err := uc.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if len(products) != len(productIDs) {
		return nil, apperr.New(op, apperr.KindInvalidReference, "One or more product IDs are invalid.")
	}

	now := time.Now().UTC()
	orderDate := now
	if input.OrderDate != "" {
		orderDate, err = ParseOrderDate(input.OrderDate)
		if err != nil {
			return nil, apperr.New(op, apperr.KindInvalidArgument, "Invalid order date.")
		}
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}

	o := &model.Order{
		ID:          uuid.New().String(),
		CustomerID:  c.ID,
		TotalAmount: total,
		OrderDate:   orderDate,
		CreatedAt:   now,
		Customer:    c,
		Products:    products,
	}
	if err := uc.repo.CreateWithProducts(ctx, o, productIDs); err != nil {
		return nil, apperr.Internal(op, err)
	}

	uc.publishCreated(ctx, o, productIDs)
	return o, nil
}

func (uc *orderUseCase) publishCreated(ctx context.Context, o *model.Order, productIDs []string) {
	if uc.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := order.OrderCreatedEvent{
		EventID:   uuid.New().String(),
		EventType: order.EventTypeOrderCreated,
		Payload: order.OrderPayload{
			ID:          o.ID,
			CustomerID:  o.CustomerID,
			ProductIDs:  productIDs,
			TotalAmount: o.TotalAmount,
			OrderDate:   o.OrderDate,
		},
		Timestamp: time.Now().UTC(),
	}
	if err := uc.publisher.PublishJSON(ctx, o.ID, event); err != nil {
		uc.logger.Error("failed to publish order event", zap.String("order_id", o.ID), zap.Error(err))
	}
}

// ParseOrderDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseOrderDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	const op = "order.GetOrder"

	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if o == nil {
		return nil, apperr.New(op, apperr.KindNotFound, "Order not found.")
	}

	products, err := uc.repo.FindProducts(ctx, []string{o.ID})
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	o.Products = products[o.ID]
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	const op = "order.ListOrders"

	orders, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.Internal(op, err)
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	products, err := uc.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, 0, apperr.Internal(op, err)
	}
	for i := range orders {
		orders[i].Products = products[orders[i].ID]
	}
	return orders, count, nil
}

func (uc *orderUseCase) CountOrders(ctx context.Context) (int, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("order.CountOrders", err)
	}
	return n, nil
}

func (uc *orderUseCase) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	total, err := uc.repo.TotalRevenue(ctx)
	if err != nil {
		return decimal.Zero, apperr.Internal("order.TotalRevenue", err)
	}
	return total, nil
}
