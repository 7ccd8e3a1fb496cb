package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type candidateQueryStore interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
}

// CandidateService serves the read side of the candidate roster.
type CandidateService struct {
	candidates candidateQueryStore
	logger     *zap.Logger
}

// NewCandidateService constructs the service.
func NewCandidateService(candidates candidateQueryStore, logger *zap.Logger) *CandidateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateService{candidates: candidates, logger: logger}
}

// List returns a filtered, paginated candidate page.
func (s *CandidateService) List(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	candidates, total, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return candidates, pagination, nil
}

// Get returns one candidate by id.
func (s *CandidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	return candidate, nil
}
