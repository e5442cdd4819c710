package dto

import "github.com/shopspring/decimal"

type ProductFilters struct {
	NameIContains string           `json:"name_icontains,omitempty"`
	PriceGte      *decimal.Decimal `json:"price_gte,omitempty"`
	PriceLte      *decimal.Decimal `json:"price_lte,omitempty"`
	StockGte      *int             `json:"stock_gte,omitempty"`
	StockLte      *int             `json:"stock_lte,omitempty"`
	StockLt       *int             `json:"stock_lt,omitempty"` // low stock
	OrderBy       []string         `json:"order_by,omitempty"`
	Offset        int              `json:"offset"`
	Limit         int              `json:"limit"`
}
