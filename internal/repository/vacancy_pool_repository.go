package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/seletivo-api/internal/models"
)

// VacancyPoolRepository handles persistence of vacancy pools.
type VacancyPoolRepository struct {
	db *sqlx.DB
}

// NewVacancyPoolRepository constructs the repository.
func NewVacancyPoolRepository(db *sqlx.DB) *VacancyPoolRepository {
	return &VacancyPoolRepository{db: db}
}

const poolColumns = `id, campus_id, edital_id, shift, capacity, dynamic_split,
        quota_classified_m, quota_classified_f, quota_qualified_m, quota_qualified_f, quota_reserved,
        occupied_classified_m, occupied_classified_f, occupied_qualified_m, occupied_qualified_f, occupied_reserved,
        created_at, updated_at`

// FindByID returns a pool by its ID.
func (r *VacancyPoolRepository) FindByID(ctx context.Context, id string) (*models.VacancyPool, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancy_pools WHERE id = $1`, poolColumns)
	var pool models.VacancyPool
	if err := r.db.GetContext(ctx, &pool, query, id); err != nil {
		return nil, err
	}
	return &pool, nil
}

// FindByShiftScope returns the pool matching campus, edital and shift exactly.
func (r *VacancyPoolRepository) FindByShiftScope(ctx context.Context, campusID, editalID, shift string) (*models.VacancyPool, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancy_pools WHERE campus_id = $1 AND edital_id = $2 AND shift = $3`, poolColumns)
	var pool models.VacancyPool
	if err := r.db.GetContext(ctx, &pool, query, campusID, editalID, shift); err != nil {
		return nil, err
	}
	return &pool, nil
}

// FindByEditalScope returns the offering-wide pool (no shift) for a campus.
func (r *VacancyPoolRepository) FindByEditalScope(ctx context.Context, campusID, editalID string) (*models.VacancyPool, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancy_pools WHERE campus_id = $1 AND edital_id = $2 AND shift IS NULL`, poolColumns)
	var pool models.VacancyPool
	if err := r.db.GetContext(ctx, &pool, query, campusID, editalID); err != nil {
		return nil, err
	}
	return &pool, nil
}

// FindLegacyByCampus returns the campus-wide pool with no edital and no shift.
func (r *VacancyPoolRepository) FindLegacyByCampus(ctx context.Context, campusID string) (*models.VacancyPool, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancy_pools WHERE campus_id = $1 AND edital_id IS NULL AND shift IS NULL`, poolColumns)
	var pool models.VacancyPool
	if err := r.db.GetContext(ctx, &pool, query, campusID); err != nil {
		return nil, err
	}
	return &pool, nil
}

// ListByCampus returns every pool owned by a campus.
func (r *VacancyPoolRepository) ListByCampus(ctx context.Context, campusID string) ([]models.VacancyPool, error) {
	query := fmt.Sprintf(`SELECT %s FROM vacancy_pools WHERE campus_id = $1 ORDER BY created_at ASC`, poolColumns)
	var pools []models.VacancyPool
	if err := r.db.SelectContext(ctx, &pools, query, campusID); err != nil {
		return nil, fmt.Errorf("list campus pools: %w", err)
	}
	return pools, nil
}

// Create persists a new pool record.
func (r *VacancyPoolRepository) Create(ctx context.Context, pool *models.VacancyPool) error {
	if pool.ID == "" {
		pool.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pool.CreatedAt.IsZero() {
		pool.CreatedAt = now
	}
	pool.UpdatedAt = now
	const query = `INSERT INTO vacancy_pools (id, campus_id, edital_id, shift, capacity, dynamic_split,
        quota_classified_m, quota_classified_f, quota_qualified_m, quota_qualified_f, quota_reserved,
        occupied_classified_m, occupied_classified_f, occupied_qualified_m, occupied_qualified_f, occupied_reserved,
        created_at, updated_at)
        VALUES (:id, :campus_id, :edital_id, :shift, :capacity, :dynamic_split,
        :quota_classified_m, :quota_classified_f, :quota_qualified_m, :quota_qualified_f, :quota_reserved,
        :occupied_classified_m, :occupied_classified_f, :occupied_qualified_m, :occupied_qualified_f, :occupied_reserved,
        :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pool); err != nil {
		return fmt.Errorf("create vacancy pool: %w", err)
	}
	return nil
}

// Update persists quotas and occupancy counters of an existing pool.
func (r *VacancyPoolRepository) Update(ctx context.Context, pool *models.VacancyPool) error {
	pool.UpdatedAt = time.Now().UTC()
	const query = `UPDATE vacancy_pools SET capacity = :capacity, dynamic_split = :dynamic_split,
        quota_classified_m = :quota_classified_m, quota_classified_f = :quota_classified_f,
        quota_qualified_m = :quota_qualified_m, quota_qualified_f = :quota_qualified_f,
        quota_reserved = :quota_reserved,
        occupied_classified_m = :occupied_classified_m, occupied_classified_f = :occupied_classified_f,
        occupied_qualified_m = :occupied_qualified_m, occupied_qualified_f = :occupied_qualified_f,
        occupied_reserved = :occupied_reserved,
        updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, pool); err != nil {
		return fmt.Errorf("update vacancy pool: %w", err)
	}
	return nil
}
