package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type poolStore interface {
	FindByID(ctx context.Context, id string) (*models.VacancyPool, error)
	FindByShiftScope(ctx context.Context, campusID, editalID, shift string) (*models.VacancyPool, error)
	FindByEditalScope(ctx context.Context, campusID, editalID string) (*models.VacancyPool, error)
	FindLegacyByCampus(ctx context.Context, campusID string) (*models.VacancyPool, error)
	Create(ctx context.Context, pool *models.VacancyPool) error
}

// PoolResolver finds the vacancy pool that applies to a (campus, edital,
// shift) scope. Pools exist at three historical granularities at once, so
// resolution walks an ordered chain: shift-specific pool, then the
// offering-wide pool for the campus, then the legacy campus-only pool.
//
// When nothing matches, a pool is created at the most specific level
// requested with every quota at zero. Every candidate therefore has a pool,
// but an unconfigured one grants no seats until an administrator sets
// capacity.
type PoolResolver struct {
	pools  poolStore
	logger *zap.Logger
}

// NewPoolResolver constructs a PoolResolver.
func NewPoolResolver(pools poolStore, logger *zap.Logger) *PoolResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolResolver{pools: pools, logger: logger}
}

type resolveStep func(ctx context.Context) (*models.VacancyPool, error)

// Resolve returns the applicable pool, creating a zero-quota one if needed.
func (r *PoolResolver) Resolve(ctx context.Context, campusID string, editalID *string, shift string) (*models.VacancyPool, error) {
	var chain []resolveStep

	if editalID != nil && shift != "" {
		chain = append(chain, func(ctx context.Context) (*models.VacancyPool, error) {
			return r.pools.FindByShiftScope(ctx, campusID, *editalID, shift)
		})
	}
	if editalID != nil {
		chain = append(chain, func(ctx context.Context) (*models.VacancyPool, error) {
			return r.pools.FindByEditalScope(ctx, campusID, *editalID)
		})
	}
	chain = append(chain, func(ctx context.Context) (*models.VacancyPool, error) {
		return r.pools.FindLegacyByCampus(ctx, campusID)
	})

	for _, step := range chain {
		pool, err := step(ctx)
		if err == nil {
			return pool, nil
		}
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up vacancy pool")
		}
	}

	return r.createAtRequestedScope(ctx, campusID, editalID, shift)
}

func (r *PoolResolver) createAtRequestedScope(ctx context.Context, campusID string, editalID *string, shift string) (*models.VacancyPool, error) {
	pool := &models.VacancyPool{CampusID: campusID, EditalID: editalID}
	if editalID != nil && shift != "" {
		pool.Shift = &shift
	}
	if err := r.pools.Create(ctx, pool); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vacancy pool")
	}

	r.logger.Info("created unconfigured vacancy pool",
		zap.String("pool_id", pool.ID),
		zap.String("campus_id", campusID),
		zap.Stringp("edital_id", editalID),
		zap.String("shift", shift),
	)
	return pool, nil
}
