package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/seletivo-api/internal/models"
)

// EditalRepository handles persistence of admission cycles.
type EditalRepository struct {
	db *sqlx.DB
}

// NewEditalRepository constructs the repository.
func NewEditalRepository(db *sqlx.DB) *EditalRepository {
	return &EditalRepository{db: db}
}

// List returns every edital, newest first.
func (r *EditalRepository) List(ctx context.Context) ([]models.Edital, error) {
	const query = `SELECT id, description, num_registrants, created_at, updated_at FROM editais ORDER BY created_at DESC`
	var editais []models.Edital
	if err := r.db.SelectContext(ctx, &editais, query); err != nil {
		return nil, fmt.Errorf("list editais: %w", err)
	}
	return editais, nil
}

// FindByID returns an edital by its ID.
func (r *EditalRepository) FindByID(ctx context.Context, id string) (*models.Edital, error) {
	const query = `SELECT id, description, num_registrants, created_at, updated_at FROM editais WHERE id = $1`
	var edital models.Edital
	if err := r.db.GetContext(ctx, &edital, query, id); err != nil {
		return nil, err
	}
	return &edital, nil
}

// Create persists a new edital record.
func (r *EditalRepository) Create(ctx context.Context, edital *models.Edital) error {
	if edital.ID == "" {
		edital.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	edital.CreatedAt = now
	edital.UpdatedAt = now
	const query = `INSERT INTO editais (id, description, num_registrants, created_at, updated_at)
        VALUES (:id, :description, :num_registrants, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, edital); err != nil {
		return fmt.Errorf("create edital: %w", err)
	}
	return nil
}

// IncrementRegistrants bumps the aggregate registrant counter.
func (r *EditalRepository) IncrementRegistrants(ctx context.Context, id string, delta int) error {
	const query = `UPDATE editais SET num_registrants = num_registrants + $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment edital registrants: %w", err)
	}
	return nil
}
