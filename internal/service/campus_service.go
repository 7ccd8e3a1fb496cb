package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type campusStore interface {
	List(ctx context.Context) ([]models.Campus, error)
	FindByID(ctx context.Context, id string) (*models.Campus, error)
	FindByName(ctx context.Context, name string) (*models.Campus, error)
	Create(ctx context.Context, campus *models.Campus) error
}

type campusPoolStore interface {
	ListByCampus(ctx context.Context, campusID string) ([]models.VacancyPool, error)
}

// CreateCampusRequest is the payload for registering a campus.
type CreateCampusRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// CampusService manages the campus catalogue.
type CampusService struct {
	campuses  campusStore
	pools     campusPoolStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampusService constructs the service.
func NewCampusService(campuses campusStore, pools campusPoolStore, validate *validator.Validate, logger *zap.Logger) *CampusService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampusService{campuses: campuses, pools: pools, validator: validate, logger: logger}
}

// List returns every campus.
func (s *CampusService) List(ctx context.Context) ([]models.Campus, error) {
	campuses, err := s.campuses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campuses")
	}
	return campuses, nil
}

// Get returns one campus by id.
func (s *CampusService) Get(ctx context.Context, id string) (*models.Campus, error) {
	campus, err := s.campuses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus")
	}
	return campus, nil
}

// Create registers a new campus with a unique name.
func (s *CampusService) Create(ctx context.Context, req CreateCampusRequest) (*models.Campus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campus payload")
	}

	if _, err := s.campuses.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "campus name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check campus name")
	}

	campus := &models.Campus{Name: req.Name}
	if err := s.campuses.Create(ctx, campus); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campus")
	}
	return campus, nil
}

// Pools lists every vacancy pool registered for a campus.
func (s *CampusService) Pools(ctx context.Context, campusID string) ([]models.VacancyPool, error) {
	if _, err := s.Get(ctx, campusID); err != nil {
		return nil, err
	}
	pools, err := s.pools.ListByCampus(ctx, campusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campus pools")
	}
	return pools, nil
}
