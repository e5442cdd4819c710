package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
	"github.com/fekuna/omnipos-crm-service/internal/auth"
	"github.com/fekuna/omnipos-crm-service/internal/inventory"
	"github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/pkg/cache"
	"github.com/fekuna/omnipos-crm-service/pkg/database/databasetest"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type item struct {
	id    string
	name  string
	stock int
}

func seed(t *testing.T, items ...item) *sqlx.DB {
	t.Helper()
	db := databasetest.New(t)
	for _, it := range items {
		db.MustExecContext(context.Background(),
			db.Rebind(`INSERT INTO products (id, name, price, stock, version, created_at, updated_at) VALUES (?, ?, 1, ?, 0, ?, ?)`),
			it.id, it.name, it.stock, fixedNow, fixedNow)
	}
	return db
}

func stocks(t *testing.T, db *sqlx.DB) map[string]int {
	t.Helper()
	var rows []struct {
		ID    string `db:"id"`
		Stock int    `db:"stock"`
	}
	require.NoError(t, db.SelectContext(context.Background(), &rows, `SELECT id, stock FROM products`))
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Stock
	}
	return out
}

type pair struct {
	Name  string
	Stock int
}

func pairs(ps []model.Product) []pair {
	out := make([]pair, len(ps))
	for i, p := range ps {
		out[i] = pair{p.Name, p.Stock}
	}
	return out
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(&cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return mr, rc
}

func TestRunRestockSweep_Scenario(t *testing.T) {
	db := seed(t, item{"a", "A", 5}, item{"b", "B", 12}, item{"c", "C", 0})
	uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop(), WithClock(clock))

	res, err := uc.RunRestockSweep(context.Background(), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, "2 product(s) restocked successfully.", res.Message)
	assert.Equal(t, []pair{{"A", 15}, {"C", 10}}, pairs(res.Updated))
	assert.Empty(t, res.Failures)
	assert.Equal(t, map[string]int{"a": 15, "b": 12, "c": 10}, stocks(t, db))

	for _, p := range res.Updated {
		assert.Equal(t, 1, p.Version)
		assert.True(t, p.UpdatedAt.Equal(fixedNow))
	}
}

func TestRunRestockSweep_EmptyInventory(t *testing.T) {
	uc := NewInventoryUseCase(repository.NewPGRepository(seed(t)), logger.NewNop())

	res, err := uc.RunRestockSweep(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.Equal(t, "0 product(s) restocked successfully.", res.Message)
	assert.Empty(t, res.Updated)
	assert.NotNil(t, res.Updated)
}

func TestRunRestockSweep_InvalidArguments(t *testing.T) {
	uc := NewInventoryUseCase(repository.NewPGRepository(seed(t)), logger.NewNop())

	_, err := uc.RunRestockSweep(context.Background(), -1, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = uc.RunRestockSweep(context.Background(), 10, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestRunRestockSweep_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		threshold := rng.Intn(30)
		increment := 1 + rng.Intn(15)

		var items []item
		for i := 0; i < 1+rng.Intn(12); i++ {
			items = append(items, item{fmt.Sprintf("p%02d", i), fmt.Sprintf("P%d", i), rng.Intn(40)})
		}
		db := seed(t, items...)
		uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop())

		res, err := uc.RunRestockSweep(context.Background(), threshold, increment)
		require.NoError(t, err)

		after := stocks(t, db)
		want := 0
		for _, it := range items {
			if it.stock < threshold {
				want++
				assert.Equal(t, it.stock+increment, after[it.id], "round %d item %s", round, it.id)
			} else {
				assert.Equal(t, it.stock, after[it.id], "round %d item %s", round, it.id)
			}
		}
		assert.Len(t, res.Updated, want)
		assert.Equal(t, RestockMessage(len(res.Updated)), res.Message)

		for i := 1; i < len(res.Updated); i++ {
			assert.Less(t, res.Updated[i-1].ID, res.Updated[i].ID)
		}
	}
}

func TestRunRestockSweep_Converges(t *testing.T) {
	db := seed(t, item{"a", "A", 0}, item{"b", "B", 3}, item{"c", "C", 9})
	uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop())

	threshold, increment := 10, 4
	maxRuns := threshold/increment + 2
	runs := 0
	for ; runs < maxRuns; runs++ {
		res, err := uc.RunRestockSweep(context.Background(), threshold, increment)
		require.NoError(t, err)
		if len(res.Updated) == 0 {
			break
		}
	}
	assert.Less(t, runs, maxRuns)
	for id, stock := range stocks(t, db) {
		assert.GreaterOrEqual(t, stock, threshold, id)
	}

	res, err := uc.RunRestockSweep(context.Background(), threshold, increment)
	require.NoError(t, err)
	assert.Equal(t, "0 product(s) restocked successfully.", res.Message)
}

type flakyRepo struct {
	inventory.Repository
	fail map[string]error
}

func (r *flakyRepo) RestockWithMovement(ctx context.Context, p *model.Product, expectedVersion int, m *model.StockMovement) error {
	if err, ok := r.fail[p.ID]; ok {
		return err
	}
	return r.Repository.RestockWithMovement(ctx, p, expectedVersion, m)
}

func TestRunRestockSweep_ContinuesPastFailures(t *testing.T) {
	db := seed(t, item{"a", "A", 1}, item{"b", "B", 2}, item{"c", "C", 3})
	repo := &flakyRepo{
		Repository: repository.NewPGRepository(db),
		fail: map[string]error{
			"a": errors.New("disk full"),
			"b": inventory.ErrVersionConflict,
		},
	}
	uc := NewInventoryUseCase(repo, logger.NewNop())

	res, err := uc.RunRestockSweep(context.Background(), 10, 10)
	require.NoError(t, err)

	assert.Equal(t, "1 product(s) restocked successfully.", res.Message)
	assert.Equal(t, []pair{{"C", 13}}, pairs(res.Updated))
	assert.Equal(t, []model.RestockFailure{
		{ProductID: "a", Name: "A", Reason: "Failed to update stock."},
		{ProductID: "b", Name: "B", Reason: "Product was modified concurrently."},
	}, res.Failures)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 13}, stocks(t, db))
}

func TestRunRestockSweep_RecordsMovements(t *testing.T) {
	db := seed(t, item{"a", "A", 4})
	uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop(), WithClock(clock))

	ctx := auth.WithActor(context.Background(), "ops@example.com")
	_, err := uc.RunRestockSweep(ctx, 10, 6)
	require.NoError(t, err)

	moves, count, err := uc.ListMovements(context.Background(), &dto.MovementFilters{ProductID: "a"})
	require.NoError(t, err)
	require.Equal(t, 1, count)
	m := moves[0]
	assert.Equal(t, model.MovementTypeRestock, m.MovementType)
	assert.Equal(t, 6, m.QuantityChange)
	assert.Equal(t, 4, m.QuantityBefore)
	assert.Equal(t, 10, m.QuantityAfter)
	assert.Equal(t, "ops@example.com", *m.CreatedBy)
	assert.True(t, m.CreatedAt.Equal(fixedNow))
}

func TestRunRestockSweep_LockHeldElsewhere(t *testing.T) {
	mr, rc := newRedis(t)
	db := seed(t, item{"a", "A", 1})
	uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop(), WithLocker(rc))

	require.NoError(t, mr.Set(SweepLockKey, "other-process"))

	_, err := uc.RunRestockSweep(context.Background(), 10, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindBusy))
	assert.Equal(t, 1, stocks(t, db)["a"])

	got, err := mr.Get(SweepLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-process", got)
}

func TestRunRestockSweep_ReleasesLockAndInvalidatesCache(t *testing.T) {
	mr, rc := newRedis(t)
	db := seed(t, item{"a", "A", 1})
	uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop(),
		WithLocker(rc), WithListCache(rc), WithLockTTL(time.Minute))

	require.NoError(t, mr.Set("products:list:abc", "cached"))

	_, err := uc.RunRestockSweep(context.Background(), 10, 10)
	require.NoError(t, err)
	assert.False(t, mr.Exists(SweepLockKey))
	assert.False(t, mr.Exists("products:list:abc"))
}

func TestRunRestockSweep_ConcurrentSweepsDoNotDoubleRestock(t *testing.T) {
	_, rc := newRedis(t)
	db := seed(t, item{"a", "A", 5}, item{"b", "B", 12}, item{"c", "C", 0})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc := NewInventoryUseCase(repository.NewPGRepository(db), logger.NewNop(), WithLocker(rc))
			_, err := uc.RunRestockSweep(context.Background(), 10, 10)
			if err != nil {
				assert.True(t, apperr.IsKind(err, apperr.KindBusy), "%v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"a": 15, "b": 12, "c": 10}, stocks(t, db))
}
