package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/omnipos-crm-service/internal/inventory"
	"github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/pkg/database"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindBelowThreshold(ctx context.Context, threshold int) ([]model.Product, error) {
	var items []model.Product
	query := r.DB.Rebind(`SELECT * FROM products WHERE stock < ? ORDER BY id ASC`)
	if err := r.DB.SelectContext(ctx, &items, query, threshold); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PGRepository) RestockWithMovement(ctx context.Context, p *model.Product, expectedVersion int, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Update stock guarded by version
	updateQuery := tx.Rebind(`
        UPDATE products
        SET stock = ?, version = ?, updated_at = ?
        WHERE id = ? AND version = ?
    `)
	res, err := tx.ExecContext(ctx, updateQuery, p.Stock, p.Version, p.UpdatedAt, p.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return inventory.ErrVersionConflict
	}

	// 2. Log movement
	insertLogQuery := `
        INSERT INTO stock_movements (
            id, product_id, movement_type, quantity_change, quantity_before,
            quantity_after, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :notes, :created_by, :created_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertLogQuery, movement); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
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

	query := database.Paginate("SELECT * FROM stock_movements"+whereClause+" ORDER BY created_at DESC, id ASC", f.Offset, f.Limit)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
