package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-crm-service/internal/inventory"
	"github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/pkg/database/databasetest"
)

var now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func insertProduct(t *testing.T, db *sqlx.DB, id, name string, stock int) {
	t.Helper()
	db.MustExecContext(context.Background(),
		db.Rebind(`INSERT INTO products (id, name, price, stock, version, created_at, updated_at) VALUES (?, ?, 9.99, ?, 0, ?, ?)`),
		id, name, stock, now, now)
}

func movement(id, productID string, before, after int, at time.Time) *model.StockMovement {
	actor := "tester"
	return &model.StockMovement{
		ID: id, ProductID: productID, MovementType: model.MovementTypeRestock,
		QuantityChange: after - before, QuantityBefore: before, QuantityAfter: after,
		CreatedBy: &actor, CreatedAt: at,
	}
}

func TestPGRepository_FindBelowThreshold(t *testing.T) {
	db := databasetest.New(t)
	insertProduct(t, db, "c", "C", 0)
	insertProduct(t, db, "a", "A", 5)
	insertProduct(t, db, "b", "B", 12)
	insertProduct(t, db, "d", "D", 10)
	repo := NewPGRepository(db)

	items, err := repo.FindBelowThreshold(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "c", items[1].ID)

	none, err := repo.FindBelowThreshold(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPGRepository_RestockWithMovement(t *testing.T) {
	db := databasetest.New(t)
	insertProduct(t, db, "a", "A", 5)
	repo := NewPGRepository(db)
	ctx := context.Background()

	p := &model.Product{BaseModel: model.BaseModel{ID: "a", UpdatedAt: now.Add(time.Hour)}, Name: "A", Stock: 15, Version: 1}
	require.NoError(t, repo.RestockWithMovement(ctx, p, 0, movement("m1", "a", 5, 15, now)))

	var stored model.Product
	require.NoError(t, db.GetContext(ctx, &stored, `SELECT * FROM products WHERE id = 'a'`))
	assert.Equal(t, 15, stored.Stock)
	assert.Equal(t, 1, stored.Version)
	assert.True(t, stored.UpdatedAt.Equal(now.Add(time.Hour)))

	moves, count, err := repo.ListMovements(ctx, &dto.MovementFilters{ProductID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, moves, 1)
	assert.Equal(t, 10, moves[0].QuantityChange)
	assert.Equal(t, "tester", *moves[0].CreatedBy)
}

func TestPGRepository_RestockWithMovement_VersionConflict(t *testing.T) {
	db := databasetest.New(t)
	insertProduct(t, db, "a", "A", 5)
	repo := NewPGRepository(db)
	ctx := context.Background()

	p := &model.Product{BaseModel: model.BaseModel{ID: "a", UpdatedAt: now}, Stock: 15, Version: 8}
	err := repo.RestockWithMovement(ctx, p, 7, movement("m1", "a", 5, 15, now))
	assert.ErrorIs(t, err, inventory.ErrVersionConflict)

	var stock int
	require.NoError(t, db.GetContext(ctx, &stock, `SELECT stock FROM products WHERE id = 'a'`))
	assert.Equal(t, 5, stock)

	_, count, err := repo.ListMovements(ctx, &dto.MovementFilters{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPGRepository_ListMovementsNewestFirst(t *testing.T) {
	db := databasetest.New(t)
	insertProduct(t, db, "a", "A", 0)
	insertProduct(t, db, "b", "B", 0)
	repo := NewPGRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.RestockWithMovement(ctx,
		&model.Product{BaseModel: model.BaseModel{ID: "a", UpdatedAt: now}, Stock: 10, Version: 1}, 0,
		movement("m1", "a", 0, 10, now)))
	require.NoError(t, repo.RestockWithMovement(ctx,
		&model.Product{BaseModel: model.BaseModel{ID: "b", UpdatedAt: now}, Stock: 10, Version: 1}, 0,
		movement("m2", "b", 0, 10, now.Add(time.Minute))))

	moves, count, err := repo.ListMovements(ctx, &dto.MovementFilters{MovementType: model.MovementTypeRestock, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, moves, 1)
	assert.Equal(t, "m2", moves[0].ID)
}
