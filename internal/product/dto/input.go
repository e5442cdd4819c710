package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}
