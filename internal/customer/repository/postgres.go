package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-crm-service/internal/customer/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
)

var customerOrderColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (id, name, email, phone, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	query := r.DB.Rebind(`SELECT * FROM customers WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	if len(ids) == 0 {
		return []model.Customer{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM customers WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var items []model.Customer
	err = r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...)
	return items, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error) {
	var customers []model.Customer
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.NameIContains != "" {
		conditions = append(conditions, "LOWER(name) LIKE :name")
		args["name"] = database.ContainsPattern(f.NameIContains)
	}
	if f.EmailIContains != "" {
		conditions = append(conditions, "LOWER(email) LIKE :email")
		args["email"] = database.ContainsPattern(f.EmailIContains)
	}
	if f.CreatedAtGte != nil {
		conditions = append(conditions, "created_at >= :created_gte")
		args["created_gte"] = f.CreatedAtGte.UTC()
	}
	if f.CreatedAtLte != nil {
		conditions = append(conditions, "created_at <= :created_lte")
		args["created_lte"] = f.CreatedAtLte.UTC()
	}
	if f.PhonePattern != "" {
		conditions = append(conditions, "phone LIKE :phone")
		args["phone"] = f.PhonePattern + "%"
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(LOWER(name) LIKE :search OR LOWER(email) LIKE :search)")
		args["search"] = database.ContainsPattern(f.SearchQuery)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM customers" + whereClause
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

	orderBy := database.OrderClause(f.OrderBy, customerOrderColumns, "created_at ASC")
	query := database.Paginate("SELECT * FROM customers"+whereClause+" ORDER BY "+orderBy+", id ASC", f.Offset, f.Limit)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &customers, args); err != nil {
		return nil, 0, err
	}
	return customers, count, nil
}

func (r *PGRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM customers`)
	return count, err
}

func (r *PGRepository) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM customers WHERE email = ?`)
	if err := r.DB.GetContext(ctx, &count, query, email); err != nil {
		return false, err
	}
	return count == 0, nil
}
