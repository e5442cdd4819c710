package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/order/dto"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
)

var orderOrderColumns = map[string]string{
	"id":          "o.id",
	"totalAmount": "o.total_amount",
	"orderDate":   "o.order_date",
	"createdAt":   "o.created_at",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateWithProducts(ctx context.Context, o *model.Order, productIDs []string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertOrder := `
        INSERT INTO orders (id, customer_id, total_amount, order_date, created_at)
        VALUES (:id, :customer_id, :total_amount, :order_date, :created_at)
    `
	if _, err := tx.NamedExecContext(ctx, insertOrder, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	linkQuery := tx.Rebind(`INSERT INTO order_products (order_id, product_id) VALUES (?, ?)`)
	for _, pid := range productIDs {
		if _, err := tx.ExecContext(ctx, linkQuery, o.ID, pid); err != nil {
			return fmt.Errorf("failed to link product %s: %w", pid, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	query := r.DB.Rebind(`SELECT * FROM orders WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &o, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.TotalAmountGte != nil {
		conditions = append(conditions, "o.total_amount >= :total_gte")
		args["total_gte"] = *f.TotalAmountGte
	}
	if f.TotalAmountLte != nil {
		conditions = append(conditions, "o.total_amount <= :total_lte")
		args["total_lte"] = *f.TotalAmountLte
	}
	if f.OrderDateGte != nil {
		conditions = append(conditions, "o.order_date >= :date_gte")
		args["date_gte"] = f.OrderDateGte.UTC()
	}
	if f.OrderDateLte != nil {
		conditions = append(conditions, "o.order_date <= :date_lte")
		args["date_lte"] = f.OrderDateLte.UTC()
	}
	if f.CustomerName != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM customers c WHERE c.id = o.customer_id AND LOWER(c.name) LIKE :customer_name)")
		args["customer_name"] = database.ContainsPattern(f.CustomerName)
	}
	if f.ProductName != "" {
		conditions = append(conditions, `EXISTS (SELECT 1 FROM order_products op JOIN products p ON p.id = op.product_id
            WHERE op.order_id = o.id AND LOWER(p.name) LIKE :product_name)`)
		args["product_name"] = database.ContainsPattern(f.ProductName)
	}
	if f.ProductID != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM order_products op WHERE op.order_id = o.id AND op.product_id = :product_id)")
		args["product_id"] = f.ProductID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM orders o" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			rows.Close()
			return nil, 0, err
		}
	}
	rows.Close()

	orderBy := database.OrderClause(f.OrderBy, orderOrderColumns, "o.order_date DESC")
	query := database.Paginate("SELECT o.* FROM orders o"+whereClause+" ORDER BY "+orderBy+", o.id ASC", f.Offset, f.Limit)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

type orderProductRow struct {
	OrderID string `db:"order_id"`
	model.Product
}

func (r *PGRepository) FindProducts(ctx context.Context, orderIDs []string) (map[string][]model.Product, error) {
	out := make(map[string][]model.Product, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
        SELECT op.order_id, p.*
        FROM order_products op
        JOIN products p ON p.id = op.product_id
        WHERE op.order_id IN (?)
        ORDER BY p.id
    `, orderIDs)
	if err != nil {
		return nil, err
	}

	var rows []orderProductRow
	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], row.Product)
	}
	return out, nil
}

func (r *PGRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM orders`)
	return count, err
}

func (r *PGRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.DB.GetContext(ctx, &total, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`); err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}
