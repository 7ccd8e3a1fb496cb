package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
)

type importCandidateStore interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	ExistsByCPF(ctx context.Context, cpf string, editalID *string) (bool, error)
}

type importCampusStore interface {
	FindOrCreateByName(ctx context.Context, name string) (*models.Campus, error)
}

type importEditalStore interface {
	FindByID(ctx context.Context, id string) (*models.Edital, error)
	IncrementRegistrants(ctx context.Context, id string, delta int) error
}

// ImportResult summarises one spreadsheet import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImportService loads candidate registrations from CSV spreadsheets. Rows are
// processed tolerantly: a malformed row is skipped with a warning and the rest
// of the file continues, because historical exports are full of partial rows.
type ImportService struct {
	candidates importCandidateStore
	campuses   importCampusStore
	editais    importEditalStore
	resolver   scopeResolver
	logger     *zap.Logger
}

// NewImportService constructs the service.
func NewImportService(candidates importCandidateStore, campuses importCampusStore, editais importEditalStore, resolver scopeResolver, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		candidates: candidates,
		campuses:   campuses,
		editais:    editais,
		resolver:   resolver,
		logger:     logger,
	}
}

// ImportCSV reads candidate rows and persists them under the given edital.
// Campuses referenced by name are created on first sight, and every imported
// candidate's scope gets a vacancy pool resolved (and lazily created) so the
// allocation endpoints never meet a scope without one.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader, editalID *string) (*ImportResult, error) {
	if editalID != nil {
		if _, err := s.editais.FindByID(ctx, *editalID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "edital not found")
		}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable csv file")
	}
	cols, err := mapHeader(header)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: malformed row", line))
			continue
		}

		candidate, warn := s.parseRow(record, cols, editalID)
		if warn != "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %s", line, warn))
			continue
		}

		duplicate, err := s.candidates.ExistsByCPF(ctx, candidate.CPF, editalID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicate cpf")
		}
		if duplicate {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: cpf already registered", line))
			continue
		}

		campus, err := s.campuses.FindOrCreateByName(ctx, candidate.CampusID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve campus")
		}
		candidate.CampusID = campus.ID

		if _, err := s.resolver.Resolve(ctx, candidate.CampusID, editalID, candidate.Shift); err != nil {
			return nil, err
		}

		if err := s.candidates.Create(ctx, candidate); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist candidate")
		}
		result.Imported++
	}

	if editalID != nil && result.Imported > 0 {
		if err := s.editais.IncrementRegistrants(ctx, *editalID, result.Imported); err != nil {
			s.logger.Warn("failed to bump edital registrant counter", zap.Stringp("edital_id", editalID), zap.Error(err))
		}
	}

	s.logger.Info("candidate import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// parseRow maps a csv record onto a candidate, returning a warning instead of
// an error so the caller can skip the row.
func (s *ImportService) parseRow(record []string, cols map[string]int, editalID *string) (*models.Candidate, string) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	fullName := get("full_name")
	cpf := strings.NewReplacer(".", "", "-", "").Replace(get("cpf"))
	campusName := get("campus")
	if fullName == "" || cpf == "" || campusName == "" {
		return nil, "missing name, cpf or campus"
	}

	regDate, err := parseDate(get("registration_date"))
	if err != nil {
		return nil, "unparseable registration date"
	}

	// Registration time is a ranking key compared lexicographically, so it
	// must be stored zero-padded as HH:MM:SS.
	regTime := get("registration_time")
	if regTime != "" {
		regTime, err = parseTimeOfDay(regTime)
		if err != nil {
			return nil, "unparseable registration time"
		}
	}

	candidate := &models.Candidate{
		FullName:         fullName,
		CPF:              cpf,
		CampusID:         campusName,
		EditalID:         editalID,
		Shift:            get("shift"),
		Gender:           models.ParseGender(get("gender")),
		RegistrationDate: regDate,
		RegistrationTime: regTime,
		Status:           models.StatusPending,
	}

	if raw := get("birth_date"); raw != "" {
		if birth, err := parseDate(raw); err == nil {
			candidate.BirthDate = &birth
		}
	}
	return candidate, ""
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"full_name", "cpf", "campus", "registration_date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}
	return cols, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", raw)
}

func parseTimeOfDay(raw string) (string, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("unsupported time format %q", raw)
}
