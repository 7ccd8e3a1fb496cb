package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/seletivo-api/internal/models"
)

// CampusRepository handles persistence of campuses.
type CampusRepository struct {
	db *sqlx.DB
}

// NewCampusRepository constructs the repository.
func NewCampusRepository(db *sqlx.DB) *CampusRepository {
	return &CampusRepository{db: db}
}

// List returns every campus ordered by name.
func (r *CampusRepository) List(ctx context.Context) ([]models.Campus, error) {
	const query = `SELECT id, name, created_at, updated_at FROM campuses ORDER BY name ASC`
	var campuses []models.Campus
	if err := r.db.SelectContext(ctx, &campuses, query); err != nil {
		return nil, fmt.Errorf("list campuses: %w", err)
	}
	return campuses, nil
}

// FindByID returns a campus by its ID.
func (r *CampusRepository) FindByID(ctx context.Context, id string) (*models.Campus, error) {
	const query = `SELECT id, name, created_at, updated_at FROM campuses WHERE id = $1`
	var campus models.Campus
	if err := r.db.GetContext(ctx, &campus, query, id); err != nil {
		return nil, err
	}
	return &campus, nil
}

// FindByName returns a campus by its unique name.
func (r *CampusRepository) FindByName(ctx context.Context, name string) (*models.Campus, error) {
	const query = `SELECT id, name, created_at, updated_at FROM campuses WHERE lower(name) = lower($1)`
	var campus models.Campus
	if err := r.db.GetContext(ctx, &campus, query, name); err != nil {
		return nil, err
	}
	return &campus, nil
}

// Create persists a new campus record.
func (r *CampusRepository) Create(ctx context.Context, campus *models.Campus) error {
	if campus.ID == "" {
		campus.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	campus.CreatedAt = now
	campus.UpdatedAt = now
	const query = `INSERT INTO campuses (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, campus); err != nil {
		return fmt.Errorf("create campus: %w", err)
	}
	return nil
}

// FindOrCreateByName resolves a campus by name, creating it when missing.
// Used by the import so rows referencing a new campus do not fail.
func (r *CampusRepository) FindOrCreateByName(ctx context.Context, name string) (*models.Campus, error) {
	campus, err := r.FindByName(ctx, name)
	if err == nil {
		return campus, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find campus by name: %w", err)
	}
	created := &models.Campus{Name: name}
	if err := r.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}
