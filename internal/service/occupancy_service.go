package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

const occupancyKeyPrefix = "occupancy:"

// OccupancyService serves read-only per-category occupancy snapshots, cached
// in redis because the reporting UI polls them aggressively. Mutating
// services invalidate the cache through the snapshotInvalidator interface.
type OccupancyService struct {
	pools  allocationPoolStore
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewOccupancyService constructs the service. The redis client is optional;
// without it every read goes to the database.
func NewOccupancyService(pools allocationPoolStore, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *OccupancyService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyService{pools: pools, redis: rdb, ttl: ttl, logger: logger}
}

// Snapshot returns the current occupancy view of a pool.
func (s *OccupancyService) Snapshot(ctx context.Context, poolID string) (*models.OccupancySnapshot, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, occupancyKeyPrefix+poolID).Bytes(); err == nil {
			var snap models.OccupancySnapshot
			if err := json.Unmarshal(raw, &snap); err == nil {
				return &snap, nil
			}
		}
	}

	pool, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacancy pool not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacancy pool")
	}
	snap := pool.Snapshot()

	if s.redis != nil {
		if raw, err := json.Marshal(snap); err == nil {
			if err := s.redis.Set(ctx, occupancyKeyPrefix+poolID, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("failed to cache occupancy snapshot", zap.String("pool_id", poolID), zap.Error(err))
			}
		}
	}
	return &snap, nil
}

// Invalidate drops the cached snapshot after a counter mutation.
func (s *OccupancyService) Invalidate(ctx context.Context, poolID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, occupancyKeyPrefix+poolID).Err(); err != nil {
		s.logger.Warn("failed to invalidate occupancy snapshot", zap.String("pool_id", poolID), zap.Error(err))
	}
}
