// Package seed loads demo data from a YAML file through the usecases, so
// seeded rows pass the same validation as API writes.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
	"github.com/fekuna/omnipos-crm-service/internal/customer"
	customerdto "github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/order"
	orderdto "github.com/fekuna/omnipos-crm-service/internal/order/dto"
	"github.com/fekuna/omnipos-crm-service/internal/product"
	productdto "github.com/fekuna/omnipos-crm-service/internal/product/dto"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

type File struct {
	Customers []Customer `yaml:"customers"`
	Products  []Product  `yaml:"products"`
	Orders    []Order    `yaml:"orders"`
}

type Customer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone,omitempty"`
}

type Product struct {
	Name  string          `yaml:"name"`
	Price decimal.Decimal `yaml:"price"`
	Stock int             `yaml:"stock"`
}

// Order references its customer by email and its products by name.
type Order struct {
	Customer  string   `yaml:"customer"`
	Products  []string `yaml:"products"`
	OrderDate string   `yaml:"order_date,omitempty"`
}

type Summary struct {
	Customers int
	Products  int
	Orders    int
	Errors    []string
}

// Load reads path and rejects unknown fields.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

type Seeder struct {
	customers customer.UseCase
	products  product.UseCase
	orders    order.UseCase
	log       logger.ZapLogger
}

func NewSeeder(customers customer.UseCase, products product.UseCase, orders order.UseCase, log logger.ZapLogger) *Seeder {
	return &Seeder{customers: customers, products: products, orders: orders, log: log}
}

// Apply creates every entry it can. Rejected entries are collected in
// Summary.Errors; only infrastructure failures abort the run.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Summary, error) {
	sum := &Summary{}

	inputs := make([]customerdto.CreateCustomerInput, len(f.Customers))
	for i, c := range f.Customers {
		inputs[i] = customerdto.CreateCustomerInput{Name: c.Name, Email: c.Email, Phone: c.Phone}
	}
	customerIDs := map[string]string{}
	if len(inputs) > 0 {
		created, errs, err := s.customers.BulkCreateCustomers(ctx, inputs)
		if err != nil {
			return sum, fmt.Errorf("seed customers: %w", err)
		}
		for _, c := range created {
			customerIDs[strings.ToLower(c.Email)] = c.ID
		}
		sum.Customers = len(created)
		sum.Errors = append(sum.Errors, errs...)
	}

	productIDs := map[string]string{}
	for i, p := range f.Products {
		created, err := s.products.CreateProduct(ctx, &productdto.CreateProductInput{Name: p.Name, Price: p.Price, Stock: p.Stock})
		if err != nil {
			if msg, ok := rejected(err); ok {
				sum.Errors = append(sum.Errors, fmt.Sprintf("Product %d: %s", i+1, msg))
				continue
			}
			return sum, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		productIDs[p.Name] = created.ID
		sum.Products++
	}

	for i, o := range f.Orders {
		customerID, ok, err := s.customerID(ctx, customerIDs, o.Customer)
		if err != nil {
			return sum, err
		}
		if !ok {
			sum.Errors = append(sum.Errors, fmt.Sprintf("Order %d: Unknown customer '%s'.", i+1, o.Customer))
			continue
		}
		ids := make([]string, 0, len(o.Products))
		var missing []string
		for _, name := range o.Products {
			id, ok, err := s.productID(ctx, productIDs, name)
			if err != nil {
				return sum, err
			}
			if !ok {
				missing = append(missing, name)
				continue
			}
			ids = append(ids, id)
		}
		if len(missing) > 0 {
			sum.Errors = append(sum.Errors, fmt.Sprintf("Order %d: Unknown product(s) %s.", i+1, strings.Join(missing, ", ")))
			continue
		}

		_, err = s.orders.CreateOrder(ctx, &orderdto.CreateOrderInput{CustomerID: customerID, ProductIDs: ids, OrderDate: o.OrderDate})
		if err != nil {
			if msg, ok := rejected(err); ok {
				sum.Errors = append(sum.Errors, fmt.Sprintf("Order %d: %s", i+1, msg))
				continue
			}
			return sum, fmt.Errorf("seed order %d: %w", i+1, err)
		}
		sum.Orders++
	}

	s.log.Info("Seed applied",
		zap.Int("customers", sum.Customers),
		zap.Int("products", sum.Products),
		zap.Int("orders", sum.Orders),
		zap.Int("rejected", len(sum.Errors)),
	)
	return sum, nil
}

// customerID resolves an email against this run first, then existing rows.
func (s *Seeder) customerID(ctx context.Context, known map[string]string, email string) (string, bool, error) {
	key := strings.ToLower(email)
	if id, ok := known[key]; ok {
		return id, true, nil
	}
	found, _, err := s.customers.ListCustomers(ctx, &customerdto.CustomerFilters{EmailIContains: email})
	if err != nil {
		return "", false, fmt.Errorf("look up customer %q: %w", email, err)
	}
	for _, c := range found {
		if strings.EqualFold(c.Email, email) {
			known[key] = c.ID
			return c.ID, true, nil
		}
	}
	return "", false, nil
}

func (s *Seeder) productID(ctx context.Context, known map[string]string, name string) (string, bool, error) {
	if id, ok := known[name]; ok {
		return id, true, nil
	}
	found, _, err := s.products.ListProducts(ctx, &productdto.ProductFilters{NameIContains: name})
	if err != nil {
		return "", false, fmt.Errorf("look up product %q: %w", name, err)
	}
	for _, p := range found {
		if p.Name == name {
			known[name] = p.ID
			return p.ID, true, nil
		}
	}
	return "", false, nil
}

// rejected reports the client-facing message of a validation failure.
func rejected(err error) (string, bool) {
	if apperr.KindOf(err) == apperr.KindInternal {
		return "", false
	}
	return apperr.Public(err), true
}
