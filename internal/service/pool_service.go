package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

// UpdatePoolQuotasRequest carries the new capacity configuration of a pool.
// Quotas are absolute values, not deltas.
type UpdatePoolQuotasRequest struct {
	Capacity     int  `json:"capacity" validate:"min=0"`
	DynamicSplit bool `json:"dynamic_split"`

	QuotaClassifiedMale   int `json:"quota_classified_m" validate:"min=0"`
	QuotaClassifiedFemale int `json:"quota_classified_f" validate:"min=0"`
	QuotaQualifiedMale    int `json:"quota_qualified_m" validate:"min=0"`
	QuotaQualifiedFemale  int `json:"quota_qualified_f" validate:"min=0"`
	QuotaReserved         int `json:"quota_reserved" validate:"min=0"`
}

func (r UpdatePoolQuotasRequest) quotaFor(cat models.VacancyCategory) int {
	switch cat {
	case models.CategoryClassifiedMale:
		return r.QuotaClassifiedMale
	case models.CategoryClassifiedFemale:
		return r.QuotaClassifiedFemale
	case models.CategoryQualifiedMale:
		return r.QuotaQualifiedMale
	case models.CategoryQualifiedFemale:
		return r.QuotaQualifiedFemale
	case models.CategoryReserved:
		return r.QuotaReserved
	}
	return 0
}

// PoolService administers vacancy pool capacity. Quota edits take the same
// per-pool lock the allocation engine uses, so a configuration change can
// never interleave with a running pass.
type PoolService struct {
	pools     allocationPoolStore
	locks     *PoolLocks
	snapshots snapshotInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPoolService constructs the service.
func NewPoolService(pools allocationPoolStore, locks *PoolLocks, snapshots snapshotInvalidator, validate *validator.Validate, logger *zap.Logger) *PoolService {
	if locks == nil {
		locks = NewPoolLocks()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolService{pools: pools, locks: locks, snapshots: snapshots, validator: validate, logger: logger}
}

// Get returns one pool by id.
func (s *PoolService) Get(ctx context.Context, id string) (*models.VacancyPool, error) {
	pool, err := s.pools.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacancy pool not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacancy pool")
	}
	return pool, nil
}

// UpdateQuotas overwrites the pool's capacity configuration. A quota below the
// seats already granted against it is rejected: occupancy is never shrunk by a
// configuration edit.
func (s *PoolService) UpdateQuotas(ctx context.Context, poolID string, req UpdatePoolQuotasRequest) (*models.VacancyPool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quota payload")
	}

	lock := s.locks.Get(poolID)
	lock.Lock()
	defer lock.Unlock()

	pool, err := s.Get(ctx, poolID)
	if err != nil {
		return nil, err
	}

	for _, cat := range models.Categories() {
		if req.quotaFor(cat) < pool.Occupied(cat) {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("quota for %s (%d) is below current occupancy (%d)", cat, req.quotaFor(cat), pool.Occupied(cat)))
		}
	}

	pool.Capacity = req.Capacity
	pool.DynamicSplit = req.DynamicSplit
	for _, cat := range models.Categories() {
		pool.SetQuota(cat, req.quotaFor(cat))
	}

	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist pool quotas")
	}

	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx, pool.ID)
	}
	s.logger.Info("pool quotas updated",
		zap.String("pool_id", pool.ID),
		zap.Int("capacity", pool.TotalCapacity()),
	)
	return pool, nil
}
