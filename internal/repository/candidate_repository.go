package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/seletivo-api/internal/models"
)

// CandidateRepository handles persistence of candidates.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs the repository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = `id, full_name, cpf, birth_date, campus_id, edital_id, shift, gender,
        registration_date, registration_time, status, category, elimination_reason, created_at, updated_at`

// List returns candidates filtered by the provided criteria.
func (r *CandidateRepository) List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error) {
	base := `FROM candidates c
LEFT JOIN campuses cp ON cp.id = c.campus_id
LEFT JOIN editais e ON e.id = c.edital_id`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(lower(c.full_name) LIKE lower($%d) OR c.cpf LIKE $%d OR lower(cp.name) LIKE lower($%d))",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CampusID != "" {
		conditions = append(conditions, fmt.Sprintf("c.campus_id = $%d", len(args)+1))
		args = append(args, filter.CampusID)
	}
	if filter.EditalID != "" {
		conditions = append(conditions, fmt.Sprintf("c.edital_id = $%d", len(args)+1))
		args = append(args, filter.EditalID)
	}
	if filter.Shift != "" {
		conditions = append(conditions, fmt.Sprintf("c.shift = $%d", len(args)+1))
		args = append(args, filter.Shift)
	}
	if filter.Gender != "" {
		conditions = append(conditions, fmt.Sprintf("c.gender = $%d", len(args)+1))
		args = append(args, filter.Gender)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"registration": "c.registration_date",
		"name":         "c.full_name",
		"status":       "c.status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "c.registration_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.full_name, c.cpf, c.birth_date, c.campus_id, c.edital_id, c.shift, c.gender,
        c.registration_date, c.registration_time, c.status, c.category, c.elimination_reason, c.created_at, c.updated_at,
        cp.name AS campus_name, e.description AS edital_description
        %s ORDER BY %s %s, c.registration_time %s, c.id %s LIMIT %d OFFSET %d`,
		base+clause, orderBy, order, order, order, size, offset)

	var candidates []models.CandidateDetail
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}
	return candidates, total, nil
}

// FindByID returns a candidate by its ID.
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE id = $1`, candidateColumns)
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, id); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// ListByScope returns every candidate of a (campus, edital, shift) scope in
// registration order. Ties on date and time are broken by id so the ranking
// is a total order.
func (r *CandidateRepository) ListByScope(ctx context.Context, campusID string, editalID *string, shift string) ([]models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE campus_id = $1`, candidateColumns)
	args := []interface{}{campusID}
	if editalID != nil {
		query += fmt.Sprintf(" AND edital_id = $%d", len(args)+1)
		args = append(args, *editalID)
	}
	if shift != "" {
		query += fmt.Sprintf(" AND shift = $%d", len(args)+1)
		args = append(args, shift)
	}
	query += " ORDER BY registration_date ASC, registration_time ASC, id ASC"

	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("list scope candidates: %w", err)
	}
	return candidates, nil
}

// Create persists a new candidate record.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = now
	if candidate.Status == "" {
		candidate.Status = models.StatusPending
	}
	if candidate.Gender == "" {
		candidate.Gender = models.GenderUnknown
	}
	const query = `INSERT INTO candidates (id, full_name, cpf, birth_date, campus_id, edital_id, shift, gender,
        registration_date, registration_time, status, category, elimination_reason, created_at, updated_at)
        VALUES (:id, :full_name, :cpf, :birth_date, :campus_id, :edital_id, :shift, :gender,
        :registration_date, :registration_time, :status, :category, :elimination_reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}

// UpdateAllocation persists status, category and elimination reason.
func (r *CandidateRepository) UpdateAllocation(ctx context.Context, candidate *models.Candidate) error {
	const query = `UPDATE candidates SET status = $2, category = $3, elimination_reason = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, candidate.ID, candidate.Status, candidate.Category, candidate.EliminationReason, time.Now().UTC()); err != nil {
		return fmt.Errorf("update candidate allocation: %w", err)
	}
	return nil
}

// ExistsByCPF checks for a duplicate registration within an edital.
func (r *CandidateRepository) ExistsByCPF(ctx context.Context, cpf string, editalID *string) (bool, error) {
	query := "SELECT COUNT(*) FROM candidates WHERE cpf = $1"
	args := []interface{}{cpf}
	if editalID != nil {
		query += " AND edital_id = $2"
		args = append(args, *editalID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check candidate cpf: %w", err)
	}
	return count > 0, nil
}
