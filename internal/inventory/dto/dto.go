package dto

type MovementFilters struct {
	ProductID    string
	MovementType string
	Offset       int
	Limit        int
}
