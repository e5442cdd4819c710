package model

import "time"

const MovementTypeRestock = "restock"

type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RestockFailure describes one product the sweep selected but could not persist.
type RestockFailure struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// RestockResult is the outcome of a single sweep. Updated keeps processing order.
type RestockResult struct {
	Message  string           `json:"message"`
	Updated  []Product        `json:"updated"`
	Failures []RestockFailure `json:"failures"`
}
