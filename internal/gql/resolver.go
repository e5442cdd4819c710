package gql

import (
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
	"github.com/fekuna/omnipos-crm-service/internal/customer"
	customerdto "github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/inventory"
	inventorydto "github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/order"
	orderdto "github.com/fekuna/omnipos-crm-service/internal/order/dto"
	orderusecase "github.com/fekuna/omnipos-crm-service/internal/order/usecase"
	"github.com/fekuna/omnipos-crm-service/internal/product"
	productdto "github.com/fekuna/omnipos-crm-service/internal/product/dto"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

// RestockDefaults apply when updateLowStockProducts is called without arguments.
// Threshold also drives the allProducts lowStock filter.
type RestockDefaults struct {
	Threshold int
	Increment int
}

type Resolver struct {
	customers customer.UseCase
	products  product.UseCase
	orders    order.UseCase
	inventory inventory.UseCase
	restock   RestockDefaults
	logger    logger.ZapLogger
}

func NewResolver(customers customer.UseCase, products product.UseCase, orders order.UseCase, inv inventory.UseCase, restock RestockDefaults, log logger.ZapLogger) *Resolver {
	return &Resolver{
		customers: customers,
		products:  products,
		orders:    orders,
		inventory: inv,
		restock:   restock,
		logger:    log,
	}
}

// fail passes classified errors through and hides everything else.
func (r *Resolver) fail(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		return ae
	}
	r.logger.Error("graphql resolver failed", zap.String("op", op), zap.Error(err))
	return apperr.New(op, apperr.KindInternal, "internal server error")
}

type fetchFunc func(offset, limit int) ([]interface{}, int, error)

func (r *Resolver) paginate(op string, p graphql.ResolveParams, fetch fetchFunc) (interface{}, error) {
	offset, limit, err := pageFromArgs(p.Args)
	if err != nil {
		return nil, r.fail(op, err)
	}
	// A zero page still reports totalCount.
	fetchLimit := limit
	if fetchLimit == 0 {
		fetchLimit = 1
	}
	nodes, total, err := fetch(offset, fetchLimit)
	if err != nil {
		return nil, r.fail(op, err)
	}
	if limit == 0 {
		nodes = nil
	}
	return newConnection(nodes, offset, total), nil
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]interface{}, name string) *int {
	if v, ok := args[name].(int); ok {
		return &v
	}
	return nil
}

func decimalArg(args map[string]interface{}, name string) *decimal.Decimal {
	if v, ok := args[name].(decimal.Decimal); ok {
		return &v
	}
	return nil
}

func stringsArg(args map[string]interface{}, name string) []string {
	raw, _ := args[name].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func timeArg(op string, args map[string]interface{}, name string) (*time.Time, error) {
	s := stringArg(args, name)
	if s == "" {
		return nil, nil
	}
	t, err := orderusecase.ParseOrderDate(s)
	if err != nil {
		return nil, apperr.New(op, apperr.KindInvalidArgument, "Invalid date for "+name+".")
	}
	return &t, nil
}

// Queries

func (r *Resolver) hello(p graphql.ResolveParams) (interface{}, error) {
	return "Hello, GraphQL!", nil
}

func (r *Resolver) totalCustomers(p graphql.ResolveParams) (interface{}, error) {
	n, err := r.customers.CountCustomers(p.Context)
	if err != nil {
		return nil, r.fail("totalCustomers", err)
	}
	return n, nil
}

func (r *Resolver) totalOrders(p graphql.ResolveParams) (interface{}, error) {
	n, err := r.orders.CountOrders(p.Context)
	if err != nil {
		return nil, r.fail("totalOrders", err)
	}
	return n, nil
}

func (r *Resolver) totalRevenue(p graphql.ResolveParams) (interface{}, error) {
	total, err := r.orders.TotalRevenue(p.Context)
	if err != nil {
		return nil, r.fail("totalRevenue", err)
	}
	return total, nil
}

func (r *Resolver) allCustomers(p graphql.ResolveParams) (interface{}, error) {
	const op = "allCustomers"

	gte, err := timeArg(op, p.Args, "createdAtGte")
	if err != nil {
		return nil, r.fail(op, err)
	}
	lte, err := timeArg(op, p.Args, "createdAtLte")
	if err != nil {
		return nil, r.fail(op, err)
	}

	return r.paginate(op, p, func(offset, limit int) ([]interface{}, int, error) {
		items, total, err := r.customers.ListCustomers(p.Context, &customerdto.CustomerFilters{
			NameIContains:  stringArg(p.Args, "nameIcontains"),
			EmailIContains: stringArg(p.Args, "emailIcontains"),
			CreatedAtGte:   gte,
			CreatedAtLte:   lte,
			PhonePattern:   stringArg(p.Args, "phonePattern"),
			OrderBy:        stringsArg(p.Args, "orderBy"),
			Offset:         offset,
			Limit:          limit,
		})
		if err != nil {
			return nil, 0, err
		}
		nodes := make([]interface{}, len(items))
		for i := range items {
			nodes[i] = toCustomerView(&items[i])
		}
		return nodes, total, nil
	})
}

func (r *Resolver) allProducts(p graphql.ResolveParams) (interface{}, error) {
	filters := &productdto.ProductFilters{
		NameIContains: stringArg(p.Args, "nameIcontains"),
		PriceGte:      decimalArg(p.Args, "priceGte"),
		PriceLte:      decimalArg(p.Args, "priceLte"),
		StockGte:      intArg(p.Args, "stockGte"),
		StockLte:      intArg(p.Args, "stockLte"),
		OrderBy:       stringsArg(p.Args, "orderBy"),
	}
	if low, _ := p.Args["lowStock"].(bool); low {
		threshold := r.restock.Threshold
		filters.StockLt = &threshold
	}

	return r.paginate("allProducts", p, func(offset, limit int) ([]interface{}, int, error) {
		filters.Offset, filters.Limit = offset, limit
		items, total, err := r.products.ListProducts(p.Context, filters)
		if err != nil {
			return nil, 0, err
		}
		nodes := make([]interface{}, len(items))
		for i := range items {
			v := toProductView(&items[i])
			nodes[i] = &v
		}
		return nodes, total, nil
	})
}

func (r *Resolver) allOrders(p graphql.ResolveParams) (interface{}, error) {
	const op = "allOrders"

	gte, err := timeArg(op, p.Args, "orderDateGte")
	if err != nil {
		return nil, r.fail(op, err)
	}
	lte, err := timeArg(op, p.Args, "orderDateLte")
	if err != nil {
		return nil, r.fail(op, err)
	}

	return r.paginate(op, p, func(offset, limit int) ([]interface{}, int, error) {
		items, total, err := r.orders.ListOrders(p.Context, &orderdto.OrderFilters{
			TotalAmountGte: decimalArg(p.Args, "totalAmountGte"),
			TotalAmountLte: decimalArg(p.Args, "totalAmountLte"),
			OrderDateGte:   gte,
			OrderDateLte:   lte,
			CustomerName:   stringArg(p.Args, "customerName"),
			ProductName:    stringArg(p.Args, "productName"),
			ProductID:      stringArg(p.Args, "productId"),
			OrderBy:        stringsArg(p.Args, "orderBy"),
			Offset:         offset,
			Limit:          limit,
		})
		if err != nil {
			return nil, 0, err
		}
		if err := r.attachCustomers(p, items); err != nil {
			return nil, 0, err
		}
		nodes := make([]interface{}, len(items))
		for i := range items {
			nodes[i] = toOrderView(&items[i])
		}
		return nodes, total, nil
	})
}

func (r *Resolver) attachCustomers(p graphql.ResolveParams, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.CustomerID)
	}
	customers, err := r.customers.GetCustomers(p.Context, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*model.Customer, len(customers))
	for i := range customers {
		byID[customers[i].ID] = &customers[i]
	}
	for i := range orders {
		orders[i].Customer = byID[orders[i].CustomerID]
	}
	return nil
}

func (r *Resolver) customer(p graphql.ResolveParams) (interface{}, error) {
	c, err := r.customers.GetCustomer(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		return nil, r.fail("customer", err)
	}
	return toCustomerView(c), nil
}

func (r *Resolver) product(p graphql.ResolveParams) (interface{}, error) {
	item, err := r.products.GetProduct(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		return nil, r.fail("product", err)
	}
	v := toProductView(item)
	return &v, nil
}

func (r *Resolver) order(p graphql.ResolveParams) (interface{}, error) {
	o, err := r.orders.GetOrder(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		return nil, r.fail("order", err)
	}
	orders := []model.Order{*o}
	if err := r.attachCustomers(p, orders); err != nil {
		return nil, r.fail("order", err)
	}
	return toOrderView(&orders[0]), nil
}

func (r *Resolver) searchCustomers(p graphql.ResolveParams) (interface{}, error) {
	limit := 0
	if v := intArg(p.Args, "limit"); v != nil {
		limit = *v
	}
	items, err := r.customers.SearchCustomers(p.Context, stringArg(p.Args, "query"), limit)
	if err != nil {
		return nil, r.fail("searchCustomers", err)
	}
	out := make([]*customerView, len(items))
	for i := range items {
		out[i] = toCustomerView(&items[i])
	}
	return out, nil
}

func (r *Resolver) stockMovements(p graphql.ResolveParams) (interface{}, error) {
	return r.paginate("stockMovements", p, func(offset, limit int) ([]interface{}, int, error) {
		items, total, err := r.inventory.ListMovements(p.Context, &inventorydto.MovementFilters{
			ProductID:    stringArg(p.Args, "productId"),
			MovementType: stringArg(p.Args, "movementType"),
			Offset:       offset,
			Limit:        limit,
		})
		if err != nil {
			return nil, 0, err
		}
		nodes := make([]interface{}, len(items))
		for i := range items {
			v := toMovementView(&items[i])
			nodes[i] = &v
		}
		return nodes, total, nil
	})
}

// Mutations

func (r *Resolver) createCustomer(p graphql.ResolveParams) (interface{}, error) {
	c, err := r.customers.CreateCustomer(p.Context, &customerdto.CreateCustomerInput{
		Name:  stringArg(p.Args, "name"),
		Email: stringArg(p.Args, "email"),
		Phone: stringArg(p.Args, "phone"),
	})
	if err != nil {
		return nil, r.fail("createCustomer", err)
	}
	return map[string]interface{}{
		"customer": toCustomerView(c),
		"message":  "Customer created successfully.",
	}, nil
}

func (r *Resolver) bulkCreateCustomers(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["input"].([]interface{})
	inputs := make([]customerdto.CreateCustomerInput, 0, len(raw))
	for _, entry := range raw {
		m, _ := entry.(map[string]interface{})
		inputs = append(inputs, customerdto.CreateCustomerInput{
			Name:  stringArg(m, "name"),
			Email: stringArg(m, "email"),
			Phone: stringArg(m, "phone"),
		})
	}

	created, errs, err := r.customers.BulkCreateCustomers(p.Context, inputs)
	if err != nil {
		return nil, r.fail("bulkCreateCustomers", err)
	}
	views := make([]*customerView, len(created))
	for i := range created {
		views[i] = toCustomerView(&created[i])
	}
	return map[string]interface{}{
		"customers": views,
		"errors":    errs,
	}, nil
}

func (r *Resolver) createProduct(p graphql.ResolveParams) (interface{}, error) {
	price, ok := p.Args["price"].(decimal.Decimal)
	if !ok {
		return nil, r.fail("createProduct", apperr.New("createProduct", apperr.KindInvalidArgument, "Price must be a positive number."))
	}
	stock := 0
	if v := intArg(p.Args, "stock"); v != nil {
		stock = *v
	}

	item, err := r.products.CreateProduct(p.Context, &productdto.CreateProductInput{
		Name:  stringArg(p.Args, "name"),
		Price: price,
		Stock: stock,
	})
	if err != nil {
		return nil, r.fail("createProduct", err)
	}
	v := toProductView(item)
	return map[string]interface{}{"product": &v}, nil
}

func (r *Resolver) createOrder(p graphql.ResolveParams) (interface{}, error) {
	o, err := r.orders.CreateOrder(p.Context, &orderdto.CreateOrderInput{
		CustomerID: stringArg(p.Args, "customerId"),
		ProductIDs: stringsArg(p.Args, "productIds"),
		OrderDate:  stringArg(p.Args, "orderDate"),
	})
	if err != nil {
		return nil, r.fail("createOrder", err)
	}
	return map[string]interface{}{"order": toOrderView(o)}, nil
}

func (r *Resolver) updateLowStockProducts(p graphql.ResolveParams) (interface{}, error) {
	threshold, increment := r.restock.Threshold, r.restock.Increment
	if v := intArg(p.Args, "threshold"); v != nil {
		threshold = *v
	}
	if v := intArg(p.Args, "increment"); v != nil {
		increment = *v
	}

	res, err := r.inventory.RunRestockSweep(p.Context, threshold, increment)
	if err != nil {
		return nil, r.fail("updateLowStockProducts", err)
	}
	return toRestockView(res), nil
}
