package gql

import (
	"github.com/graphql-go/graphql"
)

// NewSchema wires the CRM types, queries and mutations to r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"phone":     &graphql.Field{Type: graphql.String},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"price":     &graphql.Field{Type: graphql.NewNonNull(Decimal)},
			"stock":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"version":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"customerId":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"customer":    &graphql.Field{Type: customerType},
			"products":    &graphql.Field{Type: graphql.NewList(productType)},
			"totalAmount": &graphql.Field{Type: graphql.NewNonNull(Decimal)},
			"orderDate":   &graphql.Field{Type: graphql.DateTime},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	movementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StockMovement",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"productId":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"movementType":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"quantityChange": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"quantityBefore": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"quantityAfter":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"notes":          &graphql.Field{Type: graphql.String},
			"createdBy":      &graphql.Field{Type: graphql.String},
			"createdAt":      &graphql.Field{Type: graphql.DateTime},
		},
	})

	failureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RestockFailure",
		Fields: graphql.Fields{
			"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":      &graphql.Field{Type: graphql.String},
			"reason":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	customerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CustomerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	orderBy := &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello":          &graphql.Field{Type: graphql.String, Resolve: r.hello},
			"totalCustomers": &graphql.Field{Type: graphql.Int, Resolve: r.totalCustomers},
			"totalOrders":    &graphql.Field{Type: graphql.Int, Resolve: r.totalOrders},
			"totalRevenue":   &graphql.Field{Type: Decimal, Resolve: r.totalRevenue},
			"customer": &graphql.Field{
				Type:    customerType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: r.customer,
			},
			"product": &graphql.Field{
				Type:    productType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: r.product,
			},
			"order": &graphql.Field{
				Type:    orderType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: r.order,
			},
			"allCustomers": &graphql.Field{
				Type: connectionType("Customer", customerType),
				Args: connectionArgs(graphql.FieldConfigArgument{
					"nameIcontains":  &graphql.ArgumentConfig{Type: graphql.String},
					"emailIcontains": &graphql.ArgumentConfig{Type: graphql.String},
					"createdAtGte":   &graphql.ArgumentConfig{Type: graphql.String},
					"createdAtLte":   &graphql.ArgumentConfig{Type: graphql.String},
					"phonePattern":   &graphql.ArgumentConfig{Type: graphql.String},
					"orderBy":        orderBy,
				}),
				Resolve: r.allCustomers,
			},
			"allProducts": &graphql.Field{
				Type: connectionType("Product", productType),
				Args: connectionArgs(graphql.FieldConfigArgument{
					"nameIcontains": &graphql.ArgumentConfig{Type: graphql.String},
					"priceGte":      &graphql.ArgumentConfig{Type: Decimal},
					"priceLte":      &graphql.ArgumentConfig{Type: Decimal},
					"stockGte":      &graphql.ArgumentConfig{Type: graphql.Int},
					"stockLte":      &graphql.ArgumentConfig{Type: graphql.Int},
					"lowStock":      &graphql.ArgumentConfig{Type: graphql.Boolean},
					"orderBy":       orderBy,
				}),
				Resolve: r.allProducts,
			},
			"allOrders": &graphql.Field{
				Type: connectionType("Order", orderType),
				Args: connectionArgs(graphql.FieldConfigArgument{
					"totalAmountGte": &graphql.ArgumentConfig{Type: Decimal},
					"totalAmountLte": &graphql.ArgumentConfig{Type: Decimal},
					"orderDateGte":   &graphql.ArgumentConfig{Type: graphql.String},
					"orderDateLte":   &graphql.ArgumentConfig{Type: graphql.String},
					"customerName":   &graphql.ArgumentConfig{Type: graphql.String},
					"productName":    &graphql.ArgumentConfig{Type: graphql.String},
					"productId":      &graphql.ArgumentConfig{Type: graphql.ID},
					"orderBy":        orderBy,
				}),
				Resolve: r.allOrders,
			},
			"searchCustomers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.searchCustomers,
			},
			"stockMovements": &graphql.Field{
				Type: connectionType("StockMovement", movementType),
				Args: connectionArgs(graphql.FieldConfigArgument{
					"productId":    &graphql.ArgumentConfig{Type: graphql.ID},
					"movementType": &graphql.ArgumentConfig{Type: graphql.String},
				}),
				Resolve: r.stockMovements,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "CreateCustomerPayload",
					Fields: graphql.Fields{
						"customer": &graphql.Field{Type: customerType},
						"message":  &graphql.Field{Type: graphql.String},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"phone": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.createCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "BulkCreateCustomersPayload",
					Fields: graphql.Fields{
						"customers": &graphql.Field{Type: graphql.NewList(customerType)},
						"errors":    &graphql.Field{Type: graphql.NewList(graphql.String)},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerInput)))},
				},
				Resolve: r.bulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name:   "CreateProductPayload",
					Fields: graphql.Fields{"product": &graphql.Field{Type: productType}},
				}),
				Args: graphql.FieldConfigArgument{
					"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"price": &graphql.ArgumentConfig{Type: graphql.NewNonNull(Decimal)},
					"stock": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: r.createProduct,
			},
			"createOrder": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name:   "CreateOrderPayload",
					Fields: graphql.Fields{"order": &graphql.Field{Type: orderType}},
				}),
				Args: graphql.FieldConfigArgument{
					"customerId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"productIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
					"orderDate":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.createOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "UpdateLowStockProductsPayload",
					Fields: graphql.Fields{
						"message":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
						"updatedProducts": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(productType))},
						"failures":        &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(failureType))},
					},
				}),
				Args: graphql.FieldConfigArgument{
					"threshold": &graphql.ArgumentConfig{Type: graphql.Int},
					"increment": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.updateLowStockProducts,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
