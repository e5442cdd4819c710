package dto

type CreateOrderInput struct {
	CustomerID string
	ProductIDs []string
	OrderDate  string // Optional, RFC 3339 or YYYY-MM-DD
}
