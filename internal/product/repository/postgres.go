package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/product/dto"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
)

var productOrderColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"createdAt": "created_at",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (id, name, price, stock, version, created_at, updated_at)
        VALUES (:id, :name, :price, :stock, :version, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := r.DB.Rebind(`SELECT * FROM products WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	err = r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...)
	return products, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.NameIContains != "" {
		conditions = append(conditions, "LOWER(name) LIKE :name")
		args["name"] = database.ContainsPattern(f.NameIContains)
	}
	if f.PriceGte != nil {
		conditions = append(conditions, "price >= :price_gte")
		args["price_gte"] = *f.PriceGte
	}
	if f.PriceLte != nil {
		conditions = append(conditions, "price <= :price_lte")
		args["price_lte"] = *f.PriceLte
	}
	if f.StockGte != nil {
		conditions = append(conditions, "stock >= :stock_gte")
		args["stock_gte"] = *f.StockGte
	}
	if f.StockLte != nil {
		conditions = append(conditions, "stock <= :stock_lte")
		args["stock_lte"] = *f.StockLte
	}
	if f.StockLt != nil {
		conditions = append(conditions, "stock < :stock_lt")
		args["stock_lt"] = *f.StockLt
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count
	countQuery := "SELECT count(*) FROM products" + whereClause
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

	// List
	orderBy := database.OrderClause(f.OrderBy, productOrderColumns, "created_at DESC")
	query := database.Paginate("SELECT * FROM products"+whereClause+" ORDER BY "+orderBy+", id ASC", f.Offset, f.Limit)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}
