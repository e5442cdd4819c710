package dto

type CreateCustomerInput struct {
	Name  string
	Email string
	Phone string // Optional
}
