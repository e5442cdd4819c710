package gql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-crm-service/internal/model"
)

// Views flatten models into structs whose json tags match schema field names,
// which is what the default field resolver looks up.

type customerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type productView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type orderView struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderDate   time.Time       `json:"orderDate"`
	CreatedAt   time.Time       `json:"createdAt"`
	Customer    *customerView   `json:"customer"`
	Products    []productView   `json:"products"`
}

type movementView struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	MovementType   string    `json:"movementType"`
	QuantityChange int       `json:"quantityChange"`
	QuantityBefore int       `json:"quantityBefore"`
	QuantityAfter  int       `json:"quantityAfter"`
	Notes          string    `json:"notes"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

type failureView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

type restockView struct {
	Message         string        `json:"message"`
	UpdatedProducts []productView `json:"updatedProducts"`
	Failures        []failureView `json:"failures"`
}

func toCustomerView(c *model.Customer) *customerView {
	if c == nil {
		return nil
	}
	return &customerView{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toProductView(p *model.Product) productView {
	return productView{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductViews(ps []model.Product) []productView {
	out := make([]productView, len(ps))
	for i := range ps {
		out[i] = toProductView(&ps[i])
	}
	return out
}

func toOrderView(o *model.Order) *orderView {
	return &orderView{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount,
		OrderDate:   o.OrderDate,
		CreatedAt:   o.CreatedAt,
		Customer:    toCustomerView(o.Customer),
		Products:    toProductViews(o.Products),
	}
}

func toMovementView(m *model.StockMovement) movementView {
	return movementView{
		ID:             m.ID,
		ProductID:      m.ProductID,
		MovementType:   m.MovementType,
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func toRestockView(r *model.RestockResult) *restockView {
	failures := make([]failureView, len(r.Failures))
	for i, f := range r.Failures {
		failures[i] = failureView{ProductID: f.ProductID, Name: f.Name, Reason: f.Reason}
	}
	return &restockView{
		Message:         r.Message,
		UpdatedProducts: toProductViews(r.Updated),
		Failures:        failures,
	}
}
