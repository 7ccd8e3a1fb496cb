package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
)

type mockPoolStore struct {
	byID       map[string]*models.VacancyPool
	shiftPool  *models.VacancyPool
	editalPool *models.VacancyPool
	legacyPool *models.VacancyPool
	created    *models.VacancyPool
	updated    *models.VacancyPool
}

func (m *mockPoolStore) FindByID(ctx context.Context, id string) (*models.VacancyPool, error) {
	if p, ok := m.byID[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPoolStore) FindByShiftScope(ctx context.Context, campusID, editalID, shift string) (*models.VacancyPool, error) {
	if m.shiftPool != nil {
		return m.shiftPool, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPoolStore) FindByEditalScope(ctx context.Context, campusID, editalID string) (*models.VacancyPool, error) {
	if m.editalPool != nil {
		return m.editalPool, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPoolStore) FindLegacyByCampus(ctx context.Context, campusID string) (*models.VacancyPool, error) {
	if m.legacyPool != nil {
		return m.legacyPool, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPoolStore) Create(ctx context.Context, pool *models.VacancyPool) error {
	if pool.ID == "" {
		pool.ID = "created-pool"
	}
	m.created = pool
	if m.byID == nil {
		m.byID = make(map[string]*models.VacancyPool)
	}
	m.byID[pool.ID] = pool
	return nil
}

func (m *mockPoolStore) Update(ctx context.Context, pool *models.VacancyPool) error {
	m.updated = pool
	if m.byID == nil {
		m.byID = make(map[string]*models.VacancyPool)
	}
	clone := *pool
	m.byID[pool.ID] = &clone
	return nil
}

func strPtr(s string) *string { return &s }

func TestResolvePrefersShiftPool(t *testing.T) {
	store := &mockPoolStore{
		shiftPool:  &models.VacancyPool{ID: "shift"},
		editalPool: &models.VacancyPool{ID: "edital"},
		legacyPool: &models.VacancyPool{ID: "legacy"},
	}
	r := NewPoolResolver(store, zap.NewNop())

	pool, err := r.Resolve(context.Background(), "campus-1", strPtr("edital-1"), "MORNING")
	require.NoError(t, err)
	assert.Equal(t, "shift", pool.ID)
}

func TestResolveFallsBackToEditalPool(t *testing.T) {
	store := &mockPoolStore{
		editalPool: &models.VacancyPool{ID: "edital"},
		legacyPool: &models.VacancyPool{ID: "legacy"},
	}
	r := NewPoolResolver(store, zap.NewNop())

	pool, err := r.Resolve(context.Background(), "campus-1", strPtr("edital-1"), "MORNING")
	require.NoError(t, err)
	assert.Equal(t, "edital", pool.ID)
}

func TestResolveFallsBackToLegacyPool(t *testing.T) {
	store := &mockPoolStore{legacyPool: &models.VacancyPool{ID: "legacy"}}
	r := NewPoolResolver(store, zap.NewNop())

	pool, err := r.Resolve(context.Background(), "campus-1", strPtr("edital-1"), "MORNING")
	require.NoError(t, err)
	assert.Equal(t, "legacy", pool.ID)
}

func TestResolveSkipsShiftLookupWithoutShift(t *testing.T) {
	store := &mockPoolStore{
		shiftPool:  &models.VacancyPool{ID: "shift"},
		editalPool: &models.VacancyPool{ID: "edital"},
	}
	r := NewPoolResolver(store, zap.NewNop())

	pool, err := r.Resolve(context.Background(), "campus-1", strPtr("edital-1"), "")
	require.NoError(t, err)
	assert.Equal(t, "edital", pool.ID)
}

func TestResolveCreatesUnconfiguredPool(t *testing.T) {
	store := &mockPoolStore{}
	r := NewPoolResolver(store, zap.NewNop())

	pool, err := r.Resolve(context.Background(), "campus-1", strPtr("edital-1"), "MORNING")
	require.NoError(t, err)
	require.NotNil(t, store.created)
	assert.Equal(t, "campus-1", pool.CampusID)
	require.NotNil(t, pool.EditalID)
	assert.Equal(t, "edital-1", *pool.EditalID)
	require.NotNil(t, pool.Shift)
	assert.Equal(t, "MORNING", *pool.Shift)
	assert.False(t, pool.Configured())
}

func TestResolveCreatesLegacyPoolWithoutEdital(t *testing.T) {
	store := &mockPoolStore{}
	r := NewPoolResolver(store, zap.NewNop())

	pool, err := r.Resolve(context.Background(), "campus-1", nil, "")
	require.NoError(t, err)
	assert.Nil(t, pool.EditalID)
	assert.Nil(t, pool.Shift)
}
