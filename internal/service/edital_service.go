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

type editalStore interface {
	List(ctx context.Context) ([]models.Edital, error)
	FindByID(ctx context.Context, id string) (*models.Edital, error)
	Create(ctx context.Context, edital *models.Edital) error
}

// CreateEditalRequest is the payload for opening an admission cycle.
type CreateEditalRequest struct {
	Description string `json:"description" validate:"required,min=3,max=255"`
}

// EditalService manages admission cycles.
type EditalService struct {
	editais   editalStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEditalService constructs the service.
func NewEditalService(editais editalStore, validate *validator.Validate, logger *zap.Logger) *EditalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditalService{editais: editais, validator: validate, logger: logger}
}

// List returns every edital, newest first.
func (s *EditalService) List(ctx context.Context) ([]models.Edital, error) {
	editais, err := s.editais.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list editais")
	}
	return editais, nil
}

// Get returns one edital by id.
func (s *EditalService) Get(ctx context.Context, id string) (*models.Edital, error) {
	edital, err := s.editais.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "edital not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edital")
	}
	return edital, nil
}

// Create opens a new admission cycle.
func (s *EditalService) Create(ctx context.Context, req CreateEditalRequest) (*models.Edital, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edital payload")
	}
	edital := &models.Edital{Description: req.Description}
	if err := s.editais.Create(ctx, edital); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create edital")
	}
	return edital, nil
}
