package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          string          `db:"id" json:"id"`
	CustomerID  string          `db:"customer_id" json:"customer_id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	OrderDate   time.Time       `db:"order_date" json:"order_date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Customer    *Customer       `db:"-" json:"customer,omitempty"` // Joined data
	Products    []Product       `db:"-" json:"products,omitempty"` // Joined data
}
