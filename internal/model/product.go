package model

import "github.com/shopspring/decimal"

// Product is the inventory item the restock sweep operates on.
type Product struct {
	BaseModel
	Name    string          `db:"name" json:"name"`
	Price   decimal.Decimal `db:"price" json:"price"`
	Stock   int             `db:"stock" json:"stock"`
	Version int             `db:"version" json:"version"`
}
