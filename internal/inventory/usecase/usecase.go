package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/apperr"
	"github.com/fekuna/omnipos-crm-service/internal/auth"
	"github.com/fekuna/omnipos-crm-service/internal/inventory"
	"github.com/fekuna/omnipos-crm-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-crm-service/internal/model"
	"github.com/fekuna/omnipos-crm-service/internal/product"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const (
	SweepLockKey = "lock:restock:sweep"

	defaultLockTTL = 30 * time.Second
	releaseTimeout = 2 * time.Second
)

// Locker guards the sweep across processes. *cache.RedisClient satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// ListCache drops cached product lists after stock changes.
type ListCache interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type Option func(*inventoryUseCase)

func WithLocker(l Locker) Option {
	return func(uc *inventoryUseCase) { uc.locker = l }
}

func WithListCache(c ListCache) Option {
	return func(uc *inventoryUseCase) { uc.cache = c }
}

func WithLockTTL(ttl time.Duration) Option {
	return func(uc *inventoryUseCase) {
		if ttl > 0 {
			uc.lockTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *inventoryUseCase) { uc.now = now }
}

type inventoryUseCase struct {
	repo    inventory.Repository
	locker  Locker
	cache   ListCache
	lockTTL time.Duration
	now     func() time.Time
	logger  logger.ZapLogger
}

// NewInventoryUseCase builds the usecase. Without WithLocker the sweep relies on
// the per-row version check alone.
func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger, opts ...Option) inventory.UseCase {
	uc := &inventoryUseCase{
		repo:    repo,
		lockTTL: defaultLockTTL,
		now:     time.Now,
		logger:  log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RestockMessage is the summary reported for a sweep that updated n products.
func RestockMessage(n int) string {
	return fmt.Sprintf("%d product(s) restocked successfully.", n)
}

// RunRestockSweep raises stock by increment for every product whose stock is
// below threshold. Items are processed in id order and evaluated once against
// their pre-sweep stock. A failure on one item is recorded and the sweep moves on.
func (uc *inventoryUseCase) RunRestockSweep(ctx context.Context, threshold, increment int) (*model.RestockResult, error) {
	const op = "inventory.RunRestockSweep"

	if threshold < 0 {
		return nil, apperr.New(op, apperr.KindInvalidArgument, "Threshold cannot be negative.")
	}
	if increment <= 0 {
		return nil, apperr.New(op, apperr.KindInvalidArgument, "Increment must be a positive number.")
	}

	if uc.locker != nil {
		token := uuid.New().String()
		ok, err := uc.locker.AcquireLock(ctx, SweepLockKey, token, uc.lockTTL)
		if err != nil {
			return nil, apperr.Internal(op, fmt.Errorf("acquire sweep lock: %w", err))
		}
		if !ok {
			return nil, apperr.New(op, apperr.KindBusy, "Restock already in progress, try again later.")
		}
		defer uc.releaseLock(token)
	}

	items, err := uc.repo.FindBelowThreshold(ctx, threshold)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	actor := auth.GetActor(ctx)
	result := &model.RestockResult{
		Updated:  []model.Product{},
		Failures: []model.RestockFailure{},
	}

	for _, item := range items {
		now := uc.now().UTC()

		restocked := item
		restocked.Stock = item.Stock + increment
		restocked.Version = item.Version + 1
		restocked.UpdatedAt = now

		movement := &model.StockMovement{
			ID:             uuid.New().String(),
			ProductID:      item.ID,
			MovementType:   model.MovementTypeRestock,
			QuantityChange: increment,
			QuantityBefore: item.Stock,
			QuantityAfter:  restocked.Stock,
			Notes:          fmt.Sprintf("Low stock restock (threshold %d)", threshold),
			CreatedBy:      &actor,
			CreatedAt:      now,
		}

		if err := uc.repo.RestockWithMovement(ctx, &restocked, item.Version, movement); err != nil {
			reason := "Failed to update stock."
			if errors.Is(err, inventory.ErrVersionConflict) {
				reason = "Product was modified concurrently."
			}
			uc.logger.Error("restock item failed",
				zap.String("product_id", item.ID),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, model.RestockFailure{
				ProductID: item.ID,
				Name:      item.Name,
				Reason:    reason,
			})
			continue
		}
		result.Updated = append(result.Updated, restocked)
	}

	result.Message = RestockMessage(len(result.Updated))

	if len(result.Updated) > 0 && uc.cache != nil {
		if err := uc.cache.DeleteByPattern(ctx, product.ListCachePattern); err != nil {
			uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
		}
	}

	uc.logger.Info("restock sweep finished",
		zap.Int("threshold", threshold),
		zap.Int("increment", increment),
		zap.Int("updated", len(result.Updated)),
		zap.Int("failed", len(result.Failures)),
		zap.String("actor", actor),
	)
	return result, nil
}

func (uc *inventoryUseCase) releaseLock(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := uc.locker.ReleaseLock(ctx, SweepLockKey, token); err != nil {
		uc.logger.Error("failed to release sweep lock", zap.Error(err))
	}
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperr.Internal("inventory.ListMovements", err)
	}
	return items, count, nil
}
