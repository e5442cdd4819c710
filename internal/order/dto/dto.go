package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderFilters struct {
	TotalAmountGte *decimal.Decimal
	TotalAmountLte *decimal.Decimal
	OrderDateGte   *time.Time
	OrderDateLte   *time.Time
	CustomerName   string // icontains on the customer's name
	ProductName    string // icontains on any linked product name
	ProductID      string
	OrderBy        []string
	Offset         int
	Limit          int
}
