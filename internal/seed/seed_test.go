package seed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrepo "github.com/fekuna/omnipos-crm-service/internal/customer/repository"
	customeruc "github.com/fekuna/omnipos-crm-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-crm-service/internal/order"
	orderrepo "github.com/fekuna/omnipos-crm-service/internal/order/repository"
	orderuc "github.com/fekuna/omnipos-crm-service/internal/order/usecase"
	productrepo "github.com/fekuna/omnipos-crm-service/internal/product/repository"
	productuc "github.com/fekuna/omnipos-crm-service/internal/product/usecase"
	"github.com/fekuna/omnipos-crm-service/pkg/database/databasetest"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

func newSeeder(t *testing.T) (*Seeder, order.UseCase) {
	t.Helper()
	db := databasetest.New(t)
	log := logger.NewNop()
	customers := customerrepo.NewPGRepository(db)
	products := productrepo.NewPGRepository(db)
	orders := orderuc.NewOrderUseCase(orderrepo.NewPGRepository(db), customers, products, nil, log)
	return NewSeeder(
		customeruc.NewCustomerUseCase(customers, nil, log),
		productuc.NewProductUseCase(products, nil, log),
		orders,
		log,
	), orders
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("customers:\n  - name: A\n    emial: a@example.com\n"))
	assert.ErrorContains(t, err, "parse seed file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	assert.ErrorContains(t, err, "read seed file")
}

func TestLoad_Fixture(t *testing.T) {
	f, err := Load("testdata/seed.yaml")
	require.NoError(t, err)

	require.Len(t, f.Customers, 3)
	require.Len(t, f.Products, 3)
	assert.Equal(t, "999.99", f.Products[0].Price.String())
	assert.Equal(t, "25.5", f.Products[1].Price.String())
	assert.Equal(t, []string{"Laptop", "Mouse"}, f.Orders[0].Products)
	assert.Equal(t, "2024-03-01", f.Orders[0].OrderDate)
}

func TestApply(t *testing.T) {
	s, orders := newSeeder(t)
	f, err := Load("testdata/seed.yaml")
	require.NoError(t, err)

	sum, err := s.Apply(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Customers)
	assert.Equal(t, 2, sum.Products)
	assert.Equal(t, 2, sum.Orders)
	assert.Equal(t, []string{
		"Entry 3: Email 'alice@example.com' already exists.",
		"Product 3: Price must be a positive number.",
		"Order 3: Unknown customer 'nobody@example.com'.",
		"Order 4: Unknown product(s) Keyboard.",
	}, sum.Errors)

	revenue, err := orders.TotalRevenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1050.99", revenue.String())
}

func TestApply_ReusesExistingRows(t *testing.T) {
	s, _ := newSeeder(t)
	ctx := context.Background()

	_, err := s.Apply(ctx, &File{
		Customers: []Customer{{Name: "Alice", Email: "alice@example.com"}},
		Products:  []Product{{Name: "Pen", Price: mustDecimal(t, "1.25"), Stock: 3}},
	})
	require.NoError(t, err)

	sum, err := s.Apply(ctx, &File{
		Orders: []Order{{Customer: "ALICE@example.com", Products: []string{"Pen", "Pen"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Orders)
	assert.Empty(t, sum.Errors)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
