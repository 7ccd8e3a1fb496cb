package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/seletivo-api/internal/models"
)

// ReportJobRepository handles persistence of report jobs.
type ReportJobRepository struct {
	db *sqlx.DB
}

// NewReportJobRepository constructs the repository.
func NewReportJobRepository(db *sqlx.DB) *ReportJobRepository {
	return &ReportJobRepository{db: db}
}

// Create persists a new queued report job.
func (r *ReportJobRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	const query = `INSERT INTO report_jobs (id, params, status, file_path, created_by, created_at, finished_at, error_message)
        VALUES (:id, :params, :status, :file_path, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// FindByID returns a job by its ID.
func (r *ReportJobRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, params, status, file_path, created_by, created_at, finished_at, error_message
        FROM report_jobs WHERE id = $1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateStatus transitions a job, optionally recording result or failure.
func (r *ReportJobRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus, filePath *string, errorMessage *string) error {
	var finishedAt *time.Time
	if status == models.ReportStatusFinished || status == models.ReportStatusFailed {
		now := time.Now().UTC()
		finishedAt = &now
	}
	const query = `UPDATE report_jobs SET status = $2, file_path = $3, error_message = $4, finished_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, filePath, errorMessage, finishedAt); err != nil {
		return fmt.Errorf("update report job: %w", err)
	}
	return nil
}
