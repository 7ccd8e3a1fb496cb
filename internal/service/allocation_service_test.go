package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
)

type mockCandidateScopeStore struct {
	candidates []models.Candidate
	updated    []models.Candidate
}

func (m *mockCandidateScopeStore) ListByScope(ctx context.Context, campusID string, editalID *string, shift string) ([]models.Candidate, error) {
	out := make([]models.Candidate, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

func (m *mockCandidateScopeStore) UpdateAllocation(ctx context.Context, candidate *models.Candidate) error {
	m.updated = append(m.updated, *candidate)
	for i := range m.candidates {
		if m.candidates[i].ID == candidate.ID {
			m.candidates[i] = *candidate
		}
	}
	return nil
}

type stubResolver struct {
	pool *models.VacancyPool
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, campusID string, editalID *string, shift string) (*models.VacancyPool, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pool, nil
}

type recordingMetrics struct {
	passes      int
	seats       map[models.VacancyCategory]int
	transitions []models.CandidateStatus
}

func (r *recordingMetrics) RecordAllocationPass() { r.passes++ }

func (r *recordingMetrics) RecordSeat(category models.VacancyCategory) {
	if r.seats == nil {
		r.seats = make(map[models.VacancyCategory]int)
	}
	r.seats[category]++
}

func (r *recordingMetrics) RecordTransition(to models.CandidateStatus) {
	r.transitions = append(r.transitions, to)
}

type recordingInvalidator struct {
	invalidated []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, poolID string) {
	r.invalidated = append(r.invalidated, poolID)
}

func staticPool(id string) *models.VacancyPool {
	return &models.VacancyPool{
		ID:                    id,
		CampusID:              "campus-1",
		QuotaClassifiedMale:   2,
		QuotaClassifiedFemale: 1,
		QuotaQualifiedMale:    1,
		QuotaQualifiedFemale:  0,
		QuotaReserved:         1,
	}
}

func newAllocationFixture(pool *models.VacancyPool, candidates []models.Candidate) (*AllocationService, *mockCandidateScopeStore, *mockPoolStore, *recordingMetrics, *recordingInvalidator) {
	candStore := &mockCandidateScopeStore{candidates: append([]models.Candidate(nil), candidates...)}
	poolStore := &mockPoolStore{byID: map[string]*models.VacancyPool{pool.ID: pool}}
	metrics := &recordingMetrics{}
	snapshots := &recordingInvalidator{}
	svc := NewAllocationService(candStore, poolStore, &stubResolver{pool: pool}, NewPoolLocks(), metrics, snapshots, 0.2, zap.NewNop())
	return svc, candStore, poolStore, metrics, snapshots
}

func TestRunCascadesInRegistrationOrder(t *testing.T) {
	pool := staticPool("pool-1")
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusPending, Gender: models.GenderFemale},
		{ID: "c2", Status: models.StatusPending, Gender: models.GenderMale},
		{ID: "c3", Status: models.StatusPending, Gender: models.GenderMale},
		{ID: "c4", Status: models.StatusPending, Gender: models.GenderMale},
		{ID: "c5", Status: models.StatusPending, Gender: models.GenderFemale},
	}
	svc, candStore, poolStore, metrics, snapshots := newAllocationFixture(pool, candidates)

	result, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 5, result.Processed)
	assert.Equal(t, 5, result.Seated)
	assert.Equal(t, 0, result.LeftPending)

	byID := make(map[string]models.Candidate)
	for _, c := range candStore.updated {
		byID[c.ID] = c
	}
	require.Len(t, byID, 5)
	assert.Equal(t, models.CategoryClassifiedFemale, *byID["c1"].Category)
	assert.Equal(t, models.CategoryClassifiedMale, *byID["c2"].Category)
	assert.Equal(t, models.CategoryClassifiedMale, *byID["c3"].Category)
	// Classified male seats exhausted: c4 cascades into qualified.
	assert.Equal(t, models.CategoryQualifiedMale, *byID["c4"].Category)
	// No female qualified quota: c5 lands on the reserve tier.
	assert.Equal(t, models.CategoryReserved, *byID["c5"].Category)
	assert.Equal(t, models.StatusReserved, byID["c5"].Status)

	require.NotNil(t, poolStore.updated)
	assert.Equal(t, 5, poolStore.updated.TotalOccupied())
	assert.Equal(t, 1, metrics.passes)
	assert.Equal(t, 2, metrics.seats[models.CategoryClassifiedMale])
	assert.Equal(t, []string{"pool-1"}, snapshots.invalidated)
}

func TestRunLeavesOverflowPending(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusPending, Gender: models.GenderMale},
		{ID: "c2", Status: models.StatusPending, Gender: models.GenderMale},
	}
	svc, candStore, _, _, _ := newAllocationFixture(pool, candidates)

	result, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Seated)
	assert.Equal(t, 1, result.LeftPending)
	// c2 was already pending, so only the seated candidate is persisted.
	require.Len(t, candStore.updated, 1)
	assert.Equal(t, "c1", candStore.updated[0].ID)
}

func TestRunSkipsSeatedCandidates(t *testing.T) {
	pool := staticPool("pool-1")
	pool.OccupiedClassifiedFemale = 1
	seated := models.CategoryClassifiedFemale
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusClassified, Gender: models.GenderFemale, Category: &seated},
		{ID: "c2", Status: models.StatusPending, Gender: models.GenderMale},
	}
	svc, candStore, poolStore, _, _ := newAllocationFixture(pool, candidates)

	result, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Seated)
	require.Len(t, candStore.updated, 1)
	assert.Equal(t, "c2", candStore.updated[0].ID)
	// The pre-existing seat is still counted.
	assert.Equal(t, 1, poolStore.updated.OccupiedClassifiedFemale)
	assert.Equal(t, 1, poolStore.updated.OccupiedClassifiedMale)
}

func TestRunSkipsEliminated(t *testing.T) {
	pool := staticPool("pool-1")
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusEliminated, Gender: models.GenderMale},
	}
	svc, candStore, _, _, _ := newAllocationFixture(pool, candidates)

	result, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, candStore.updated)
}

func TestRunQualifiedCandidatesStartAtTheirTier(t *testing.T) {
	pool := staticPool("pool-1")
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusQualified, Gender: models.GenderMale},
	}
	svc, candStore, _, _, _ := newAllocationFixture(pool, candidates)

	_, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)

	require.Len(t, candStore.updated, 1)
	assert.Equal(t, models.CategoryQualifiedMale, *candStore.updated[0].Category)
	assert.Equal(t, models.StatusQualified, candStore.updated[0].Status)
}

func TestRunRevertsUnseatableQualifiedToPending(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusQualified, Gender: models.GenderFemale},
	}
	svc, candStore, _, _, _ := newAllocationFixture(pool, candidates)

	result, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 1, result.LeftPending)
	require.Len(t, candStore.updated, 1)
	assert.Equal(t, models.StatusPending, candStore.updated[0].Status)
	assert.Nil(t, candStore.updated[0].Category)
}

func TestRunUnconfiguredPool(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1"}
	svc, _, _, _, _ := newAllocationFixture(pool, nil)

	_, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configured capacity")
}

func TestRunDynamicSplitRecomputesQuotas(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", Capacity: 4, DynamicSplit: true}
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusPending, Gender: models.GenderFemale},
		{ID: "c2", Status: models.StatusPending, Gender: models.GenderMale},
		{ID: "c3", Status: models.StatusPending, Gender: models.GenderMale},
	}
	svc, _, poolStore, _, _ := newAllocationFixture(pool, candidates)

	result, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)

	// Floor ceil(4*0.2)=1 female classified seat, 2 male, rest reserve.
	assert.Equal(t, 1, result.Split[models.CategoryClassifiedFemale])
	assert.Equal(t, 2, result.Split[models.CategoryClassifiedMale])
	assert.Equal(t, 1, result.Split[models.CategoryReserved])
	assert.Equal(t, 3, result.Seated)
	assert.Equal(t, 3, poolStore.updated.TotalOccupied())
}

func TestRunDynamicSplitIdempotentAcrossReruns(t *testing.T) {
	// 10 seats, 8 classified-tier candidates (1 female) and 4 qualified
	// (2 female). The first pass seats 10 and leaves 2 pending; a second
	// pass over the resulting state must change nothing.
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", Capacity: 10, DynamicSplit: true}
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusPending, Gender: models.GenderFemale},
	}
	for i := 2; i <= 8; i++ {
		candidates = append(candidates, models.Candidate{ID: fmt.Sprintf("c%d", i), Status: models.StatusPending, Gender: models.GenderMale})
	}
	candidates = append(candidates,
		models.Candidate{ID: "q1", Status: models.StatusQualified, Gender: models.GenderFemale},
		models.Candidate{ID: "q2", Status: models.StatusQualified, Gender: models.GenderFemale},
		models.Candidate{ID: "q3", Status: models.StatusQualified, Gender: models.GenderMale},
		models.Candidate{ID: "q4", Status: models.StatusQualified, Gender: models.GenderMale},
	)
	svc, candStore, poolStore, _, _ := newAllocationFixture(pool, candidates)

	first, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 10, first.Seated)
	assert.Equal(t, 2, first.LeftPending)
	assert.Equal(t, 10, poolStore.updated.TotalOccupied())

	seats := make(map[string]models.VacancyCategory)
	for _, c := range candStore.candidates {
		if c.Category != nil {
			seats[c.ID] = *c.Category
		}
	}
	require.Len(t, seats, 10)

	second, err := svc.Run(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Seated)
	assert.Equal(t, 2, second.LeftPending)
	assert.Equal(t, 10, poolStore.updated.TotalOccupied())
	assert.LessOrEqual(t, poolStore.updated.TotalOccupied(), pool.TotalCapacity())

	for _, c := range candStore.candidates {
		if granted, ok := seats[c.ID]; ok {
			require.NotNil(t, c.Category)
			assert.Equal(t, granted, *c.Category)
		} else {
			assert.Nil(t, c.Category)
			assert.Equal(t, models.StatusPending, c.Status)
		}
	}
}

func TestRunDeterministicAcrossRepeats(t *testing.T) {
	candidates := []models.Candidate{
		{ID: "c1", Status: models.StatusPending, Gender: models.GenderFemale},
		{ID: "c2", Status: models.StatusPending, Gender: models.GenderMale},
		{ID: "c3", Status: models.StatusPending, Gender: models.GenderMale},
	}

	var first *AllocationResult
	for i := 0; i < 3; i++ {
		pool := staticPool("pool-1")
		svc, _, _, _, _ := newAllocationFixture(pool, candidates)
		result, err := svc.Run(context.Background(), "campus-1", nil, "")
		require.NoError(t, err)
		if first == nil {
			first = result
			continue
		}
		assert.Equal(t, first.Seated, result.Seated)
		assert.Equal(t, first.ByCategory, result.ByCategory)
	}
}

