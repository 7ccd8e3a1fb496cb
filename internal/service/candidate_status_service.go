package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type transitionCandidateStore interface {
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	UpdateAllocation(ctx context.Context, candidate *models.Candidate) error
}

type transitionRecorder interface {
	RecordTransition(to models.CandidateStatus)
}

// CandidateStatusService performs the interactive single-candidate status
// transitions. Every operation resolves the candidate's pool, takes that
// pool's lock, and adjusts exactly one pool's occupancy in step with the
// candidate's recorded category — a release-then-acquire, never spanning two
// pools.
type CandidateStatusService struct {
	candidates transitionCandidateStore
	pools      allocationPoolStore
	resolver   scopeResolver
	locks      *PoolLocks
	metrics    transitionRecorder
	snapshots  snapshotInvalidator
	logger     *zap.Logger
}

// NewCandidateStatusService constructs the service.
func NewCandidateStatusService(candidates transitionCandidateStore, pools allocationPoolStore, resolver scopeResolver, locks *PoolLocks, metrics transitionRecorder, snapshots snapshotInvalidator, logger *zap.Logger) *CandidateStatusService {
	if locks == nil {
		locks = NewPoolLocks()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateStatusService{
		candidates: candidates,
		pools:      pools,
		resolver:   resolver,
		locks:      locks,
		metrics:    metrics,
		snapshots:  snapshots,
		logger:     logger,
	}
}

// PromoteToClassified grants the candidate a classified seat for their gender
// track. No-op when already classified; fails with NoCapacity when the
// category is full.
func (s *CandidateStatusService) PromoteToClassified(ctx context.Context, candidateID string) (*models.Candidate, error) {
	return s.acquire(ctx, candidateID, models.StatusClassified, func(g models.Gender) models.VacancyCategory {
		return models.ClassifiedFor(g)
	})
}

// MarkQualified grants the candidate a qualified seat for their gender track.
func (s *CandidateStatusService) MarkQualified(ctx context.Context, candidateID string) (*models.Candidate, error) {
	return s.acquire(ctx, candidateID, models.StatusQualified, func(g models.Gender) models.VacancyCategory {
		return models.QualifiedFor(g)
	})
}

// SendToReserve places the candidate on the reserve/waitlist tier.
func (s *CandidateStatusService) SendToReserve(ctx context.Context, candidateID string) (*models.Candidate, error) {
	return s.acquire(ctx, candidateID, models.StatusReserved, func(models.Gender) models.VacancyCategory {
		return models.CategoryReserved
	})
}

// Eliminate removes the candidate from the process, releasing any held seat.
// The reason is mandatory.
func (s *CandidateStatusService) Eliminate(ctx context.Context, candidateID, reason string) (*models.Candidate, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.ErrMissingReason
	}
	return s.release(ctx, candidateID, models.StatusEliminated, &reason)
}

// RevertToPending returns the candidate to the pending state, releasing any
// held seat and clearing category and elimination reason. Eliminated
// candidates are reinstated through this operation.
func (s *CandidateStatusService) RevertToPending(ctx context.Context, candidateID string) (*models.Candidate, error) {
	return s.release(ctx, candidateID, models.StatusPending, nil)
}

func (s *CandidateStatusService) acquire(ctx context.Context, candidateID string, target models.CandidateStatus, categoryFor func(models.Gender) models.VacancyCategory) (*models.Candidate, error) {
	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.Status == target {
		return candidate, nil
	}

	pool, err := s.resolver.Resolve(ctx, candidate.CampusID, candidate.EditalID, candidate.Shift)
	if err != nil {
		return nil, err
	}
	if !pool.Configured() {
		return nil, appErrors.Clone(appErrors.ErrPoolUnconfigured, "vacancy pool has no configured capacity; set quotas before granting seats")
	}

	lock := s.locks.Get(pool.ID)
	lock.Lock()
	defer lock.Unlock()

	pool, err = s.pools.FindByID(ctx, pool.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload vacancy pool")
	}

	cat := categoryFor(candidate.Gender)
	if !pool.HasAvailable(cat) {
		return nil, appErrors.Clone(appErrors.ErrNoCapacity, noCapacityHint(pool, cat))
	}

	s.releaseSeat(pool, candidate)
	if err := pool.Increment(cat); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNoCapacity, noCapacityHint(pool, cat))
	}

	candidate.Status = target
	candidate.Category = &cat
	candidate.EliminationReason = nil

	if err := s.persist(ctx, pool, candidate); err != nil {
		return nil, err
	}
	s.finish(ctx, pool.ID, target)
	return candidate, nil
}

func (s *CandidateStatusService) release(ctx context.Context, candidateID string, target models.CandidateStatus, reason *string) (*models.Candidate, error) {
	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	pool, err := s.resolver.Resolve(ctx, candidate.CampusID, candidate.EditalID, candidate.Shift)
	if err != nil {
		return nil, err
	}

	lock := s.locks.Get(pool.ID)
	lock.Lock()
	defer lock.Unlock()

	pool, err = s.pools.FindByID(ctx, pool.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload vacancy pool")
	}

	s.releaseSeat(pool, candidate)
	candidate.Status = target
	candidate.Category = nil
	candidate.EliminationReason = reason

	if err := s.persist(ctx, pool, candidate); err != nil {
		return nil, err
	}
	s.finish(ctx, pool.ID, target)
	return candidate, nil
}

// releaseSeat frees the candidate's held seat, if any. An already-empty
// counter is logged and ignored: it signals a prior double release, not a
// fault the caller can act on.
func (s *CandidateStatusService) releaseSeat(pool *models.VacancyPool, candidate *models.Candidate) {
	if candidate.Category == nil {
		return
	}
	if !pool.Decrement(*candidate.Category) {
		s.logger.Warn("inconsistent decrement: category already empty",
			zap.String("pool_id", pool.ID),
			zap.String("candidate_id", candidate.ID),
			zap.String("category", string(*candidate.Category)),
		)
	}
}

func (s *CandidateStatusService) loadCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	return candidate, nil
}

func (s *CandidateStatusService) persist(ctx context.Context, pool *models.VacancyPool, candidate *models.Candidate) error {
	if err := s.pools.Update(ctx, pool); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist pool occupancy")
	}
	if err := s.candidates.UpdateAllocation(ctx, candidate); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist candidate status")
	}
	return nil
}

func (s *CandidateStatusService) finish(ctx context.Context, poolID string, target models.CandidateStatus) {
	if s.metrics != nil {
		s.metrics.RecordTransition(target)
	}
	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx, poolID)
	}
}

// noCapacityHint reports remaining capacity so an operator can act on the
// numbers instead of a generic failure.
func noCapacityHint(pool *models.VacancyPool, cat models.VacancyCategory) string {
	if pool.Quota(cat) == 0 {
		return fmt.Sprintf("category %s has no configured quota", cat)
	}
	return fmt.Sprintf("category %s is full (%d/%d occupied)", cat, pool.Occupied(cat), pool.Quota(cat))
}
