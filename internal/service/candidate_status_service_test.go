package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type mockTransitionStore struct {
	byID    map[string]*models.Candidate
	updated []models.Candidate
}

func (m *mockTransitionStore) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	if c, ok := m.byID[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTransitionStore) UpdateAllocation(ctx context.Context, candidate *models.Candidate) error {
	m.updated = append(m.updated, *candidate)
	return nil
}

func newStatusFixture(pool *models.VacancyPool, candidates ...*models.Candidate) (*CandidateStatusService, *mockTransitionStore, *mockPoolStore, *recordingMetrics) {
	byID := make(map[string]*models.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	candStore := &mockTransitionStore{byID: byID}
	poolStore := &mockPoolStore{byID: map[string]*models.VacancyPool{pool.ID: pool}}
	metrics := &recordingMetrics{}
	svc := NewCandidateStatusService(candStore, poolStore, &stubResolver{pool: pool}, NewPoolLocks(), metrics, &recordingInvalidator{}, zap.NewNop())
	return svc, candStore, poolStore, metrics
}

func TestPromoteToClassifiedGrantsSeat(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedFemale: 1}
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusPending, Gender: models.GenderFemale}
	svc, candStore, poolStore, metrics := newStatusFixture(pool, candidate)

	updated, err := svc.PromoteToClassified(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusClassified, updated.Status)
	require.NotNil(t, updated.Category)
	assert.Equal(t, models.CategoryClassifiedFemale, *updated.Category)
	require.Len(t, candStore.updated, 1)
	assert.Equal(t, 1, poolStore.updated.OccupiedClassifiedFemale)
	assert.Equal(t, []models.CandidateStatus{models.StatusClassified}, metrics.transitions)
}

func TestPromoteToClassifiedNoOpWhenAlreadyClassified(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	category := models.CategoryClassifiedMale
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusClassified, Gender: models.GenderMale, Category: &category}
	svc, candStore, poolStore, _ := newStatusFixture(pool, candidate)

	updated, err := svc.PromoteToClassified(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusClassified, updated.Status)
	assert.Empty(t, candStore.updated)
	assert.Nil(t, poolStore.updated)
}

func TestPromoteToClassifiedNoCapacity(t *testing.T) {
	// Only a male quota exists; a female candidate's track is full.
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusPending, Gender: models.GenderFemale}
	svc, candStore, _, _ := newStatusFixture(pool, candidate)

	_, err := svc.PromoteToClassified(context.Background(), "c1")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoCapacity.Code, appErr.Code)
	assert.Empty(t, candStore.updated)
}

func TestPromoteUnconfiguredPool(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1"}
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusPending, Gender: models.GenderMale}
	svc, _, _, _ := newStatusFixture(pool, candidate)

	_, err := svc.PromoteToClassified(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPoolUnconfigured.Code, appErrors.FromError(err).Code)
}

func TestPromoteMovesSeatBetweenCategories(t *testing.T) {
	// A qualified candidate promoted to classified releases the qualified
	// seat and occupies a classified one in the same pool.
	pool := &models.VacancyPool{
		ID: "pool-1", CampusID: "campus-1",
		QuotaClassifiedMale: 1, QuotaQualifiedMale: 1,
		OccupiedQualifiedMale: 1,
	}
	category := models.CategoryQualifiedMale
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusQualified, Gender: models.GenderMale, Category: &category}
	svc, _, poolStore, _ := newStatusFixture(pool, candidate)

	updated, err := svc.PromoteToClassified(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, models.CategoryClassifiedMale, *updated.Category)
	assert.Equal(t, 0, poolStore.updated.OccupiedQualifiedMale)
	assert.Equal(t, 1, poolStore.updated.OccupiedClassifiedMale)
}

func TestEliminateRequiresReason(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusPending, Gender: models.GenderMale}
	svc, candStore, _, _ := newStatusFixture(pool, candidate)

	_, err := svc.Eliminate(context.Background(), "c1", "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingReason.Code, appErrors.FromError(err).Code)
	assert.Empty(t, candStore.updated)
}

func TestEliminateReleasesSeat(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1, OccupiedClassifiedMale: 1}
	category := models.CategoryClassifiedMale
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusClassified, Gender: models.GenderMale, Category: &category}
	svc, _, poolStore, _ := newStatusFixture(pool, candidate)

	updated, err := svc.Eliminate(context.Background(), "c1", "document fraud")
	require.NoError(t, err)

	assert.Equal(t, models.StatusEliminated, updated.Status)
	assert.Nil(t, updated.Category)
	require.NotNil(t, updated.EliminationReason)
	assert.Equal(t, "document fraud", *updated.EliminationReason)
	assert.Equal(t, 0, poolStore.updated.OccupiedClassifiedMale)
}

func TestRevertReinstatesEliminated(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	reason := "document fraud"
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusEliminated, Gender: models.GenderMale, EliminationReason: &reason}
	svc, _, _, _ := newStatusFixture(pool, candidate)

	updated, err := svc.RevertToPending(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Nil(t, updated.Category)
	assert.Nil(t, updated.EliminationReason)
}

func TestReleaseWithEmptyCounterIsNoOp(t *testing.T) {
	// Category counter already at zero: the release is logged and skipped,
	// never driven negative, and the transition still succeeds.
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	category := models.CategoryClassifiedMale
	candidate := &models.Candidate{ID: "c1", CampusID: "campus-1", Status: models.StatusClassified, Gender: models.GenderMale, Category: &category}
	svc, _, poolStore, _ := newStatusFixture(pool, candidate)

	updated, err := svc.RevertToPending(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, 0, poolStore.updated.OccupiedClassifiedMale)
}

func TestTransitionCandidateNotFound(t *testing.T) {
	pool := &models.VacancyPool{ID: "pool-1", CampusID: "campus-1", QuotaClassifiedMale: 1}
	svc, _, _, _ := newStatusFixture(pool)

	_, err := svc.PromoteToClassified(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
