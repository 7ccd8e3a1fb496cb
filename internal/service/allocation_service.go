package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type allocationCandidateStore interface {
	ListByScope(ctx context.Context, campusID string, editalID *string, shift string) ([]models.Candidate, error)
	UpdateAllocation(ctx context.Context, candidate *models.Candidate) error
}

type allocationPoolStore interface {
	FindByID(ctx context.Context, id string) (*models.VacancyPool, error)
	Update(ctx context.Context, pool *models.VacancyPool) error
}

type scopeResolver interface {
	Resolve(ctx context.Context, campusID string, editalID *string, shift string) (*models.VacancyPool, error)
}

type allocationRecorder interface {
	RecordAllocationPass()
	RecordSeat(category models.VacancyCategory)
}

type snapshotInvalidator interface {
	Invalidate(ctx context.Context, poolID string)
}

// AllocationResult summarises one allocation pass.
type AllocationResult struct {
	PoolID      string                          `json:"pool_id"`
	Processed   int                             `json:"processed"`
	Seated      int                             `json:"seated"`
	LeftPending int                             `json:"left_pending"`
	ByCategory  map[models.VacancyCategory]int  `json:"by_category"`
	Split       map[models.VacancyCategory]int  `json:"split"`
}

// AllocationService runs full allocation passes over a scope: it ranks the
// scope's candidates by registration order, recomputes the pool's category
// quotas from the pool composition, then walks the ranking assigning each
// candidate the best available category via cascading fallback.
type AllocationService struct {
	candidates allocationCandidateStore
	pools      allocationPoolStore
	resolver   scopeResolver
	locks      *PoolLocks
	metrics    allocationRecorder
	snapshots  snapshotInvalidator
	floorRatio float64
	logger     *zap.Logger
}

// NewAllocationService constructs the engine. Metrics and snapshot
// invalidation are optional.
func NewAllocationService(candidates allocationCandidateStore, pools allocationPoolStore, resolver scopeResolver, locks *PoolLocks, metrics allocationRecorder, snapshots snapshotInvalidator, floorRatio float64, logger *zap.Logger) *AllocationService {
	if locks == nil {
		locks = NewPoolLocks()
	}
	if floorRatio <= 0 || floorRatio > 1 {
		floorRatio = DefaultFemaleFloorRatio
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		candidates: candidates,
		pools:      pools,
		resolver:   resolver,
		locks:      locks,
		metrics:    metrics,
		snapshots:  snapshots,
		floorRatio: floorRatio,
		logger:     logger,
	}
}

// Run executes one allocation pass over a (campus, edital, shift) scope.
//
// The pass is idempotent with respect to already-seated candidates: anyone
// holding a category is skipped and keeps the seat counted in the pool's
// occupancy. Only candidates without a category compete for the remaining
// capacity, so partial imports can be re-run safely. A candidate that cannot
// be seated is left Pending and the pass continues; only storage faults
// abort the pass.
func (s *AllocationService) Run(ctx context.Context, campusID string, editalID *string, shift string) (*AllocationResult, error) {
	// Candidate fetch happens before the pool lock is taken.
	candidates, err := s.candidates.ListByScope(ctx, campusID, editalID, shift)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates")
	}

	resolved, err := s.resolver.Resolve(ctx, campusID, editalID, shift)
	if err != nil {
		return nil, err
	}
	if !resolved.Configured() {
		return nil, appErrors.Clone(appErrors.ErrPoolUnconfigured, "vacancy pool has no configured capacity; set quotas before allocating")
	}

	lock := s.locks.Get(resolved.ID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock: counters may have moved since resolution.
	pool, err := s.pools.FindByID(ctx, resolved.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload vacancy pool")
	}

	total := pool.TotalCapacity()
	if pool.DynamicSplit {
		// Granted seats are a hard floor: only the free capacity is split,
		// over the candidates still competing for it, and each quota becomes
		// occupancy plus that category's share. The vector always sums to
		// the total, so a re-run can never seat past it.
		free := total - pool.TotalOccupied()
		if free < 0 {
			free = 0
		}
		unseated := make([]models.Candidate, 0, len(candidates))
		for i := range candidates {
			if candidates[i].Category == nil {
				unseated = append(unseated, candidates[i])
			}
		}
		configuredFemale := pool.QuotaClassifiedFemale - pool.OccupiedClassifiedFemale
		if configuredFemale < 0 {
			configuredFemale = 0
		}
		split := SplitQuotas(free, configuredFemale, CompositionOf(unseated), s.floorRatio)
		pool.SetQuota(models.CategoryClassifiedMale, pool.OccupiedClassifiedMale+split.ClassifiedMale)
		pool.SetQuota(models.CategoryClassifiedFemale, pool.OccupiedClassifiedFemale+split.ClassifiedFemale)
		pool.SetQuota(models.CategoryQualifiedMale, pool.OccupiedQualifiedMale+split.QualifiedMale)
		pool.SetQuota(models.CategoryQualifiedFemale, pool.OccupiedQualifiedFemale+split.QualifiedFemale)
		pool.SetQuota(models.CategoryReserved, pool.OccupiedReserved+split.Reserved)
	}

	result := &AllocationResult{
		PoolID:     pool.ID,
		ByCategory: make(map[models.VacancyCategory]int),
		Split:      make(map[models.VacancyCategory]int),
	}
	for _, cat := range models.Categories() {
		result.Split[cat] = pool.Quota(cat)
	}

	var changed []*models.Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.Status == models.StatusEliminated {
			continue
		}
		if c.Category != nil {
			// Already seated; occupancy already accounts for this seat.
			continue
		}
		result.Processed++

		var granted *models.VacancyCategory
		switch c.Status {
		case models.StatusClassified, models.StatusPending:
			granted = s.cascade(pool, c.Gender, true)
		case models.StatusQualified:
			granted = s.cascade(pool, c.Gender, false)
		default:
			continue
		}

		if granted == nil {
			if c.Status != models.StatusPending {
				c.Status = models.StatusPending
				c.Category = nil
				changed = append(changed, c)
			}
			result.LeftPending++
			continue
		}

		if err := pool.Increment(*granted); err != nil {
			// cascade only offers categories with free seats; reaching
			// this means the bookkeeping drifted mid-pass.
			s.logger.Error("increment failed after availability check",
				zap.String("pool_id", pool.ID), zap.String("category", string(*granted)))
			result.LeftPending++
			continue
		}
		c.Category = granted
		c.Status = models.StatusForCategory(*granted)
		changed = append(changed, c)
		result.Seated++
		result.ByCategory[*granted]++
		if s.metrics != nil {
			s.metrics.RecordSeat(*granted)
		}
	}

	if err := s.pools.Update(ctx, pool); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist pool occupancy")
	}
	for _, c := range changed {
		if err := s.candidates.UpdateAllocation(ctx, c); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist candidate allocation")
		}
	}

	if s.metrics != nil {
		s.metrics.RecordAllocationPass()
	}
	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx, pool.ID)
	}

	s.logger.Info("allocation pass finished",
		zap.String("pool_id", pool.ID),
		zap.Int("processed", result.Processed),
		zap.Int("seated", result.Seated),
		zap.Int("left_pending", result.LeftPending),
	)
	return result, nil
}

// cascade picks the best available category for a candidate. Classified-tier
// candidates fall through classified -> qualified -> reserved; qualified-tier
// candidates start at their own tier. Returns nil when every tier is full.
func (s *AllocationService) cascade(pool *models.VacancyPool, gender models.Gender, fromClassified bool) *models.VacancyCategory {
	if fromClassified {
		if cat := models.ClassifiedFor(gender); pool.HasAvailable(cat) {
			return &cat
		}
	}
	if cat := models.QualifiedFor(gender); pool.HasAvailable(cat) {
		return &cat
	}
	if cat := models.CategoryReserved; pool.HasAvailable(cat) {
		return &cat
	}
	return nil
}
