package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/seletivo-api/internal/models"
	appErrors "github.com/noah-isme/seletivo-api/pkg/errors"
	"github.com/noah-isme/seletivo-api/pkg/export"
	"github.com/noah-isme/seletivo-api/pkg/jobs"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus, filePath *string, errorMessage *string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportCandidateStore interface {
	ListByScope(ctx context.Context, campusID string, editalID *string, shift string) ([]models.Candidate, error)
}

const reportJobType = "classification_report"

// ReportService orchestrates asynchronous classification result reports: a
// job is persisted, pushed onto the in-process queue, and later downloaded by
// id once the worker has rendered the file.
type ReportService struct {
	repo   reportJobStore
	queue  jobDispatcher
	dir    string
	logger *zap.Logger
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, queue jobDispatcher, storageDir string, logger *zap.Logger) *ReportService {
	if storageDir == "" {
		storageDir = "./exports"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, queue: queue, dir: storageDir, logger: logger}
}

// CreateJob validates the request, persists the job and enqueues processing.
func (s *ReportService) CreateJob(ctx context.Context, params models.ReportJobParams, actorID string) (*models.ReportJob, error) {
	if params.CampusID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "campusId is required")
	}
	if params.Format != models.ReportFormatCSV && params.Format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	job := &models.ReportJob{
		Params:    params,
		Status:    models.ReportStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: reportJobType}); err != nil {
		msg := "failed to enqueue job"
		if updateErr := s.repo.UpdateStatus(ctx, job.ID, models.ReportStatusFailed, nil, &msg); updateErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return job, nil
}

// GetStatus exposes job metadata to clients.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return job, nil
}

// Download opens the rendered file of a finished job.
func (s *ReportService) Download(ctx context.Context, id string) (*ReportDownload, error) {
	job, err := s.GetStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusFinished || job.FilePath == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report not ready")
	}
	file, err := os.Open(*job.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return &ReportDownload{
		File:     file,
		Filename: filepath.Base(*job.FilePath),
		Format:   job.Params.Format,
	}, nil
}

// ReportWorker bridges queue jobs to the exporters.
type ReportWorker struct {
	repo       reportJobStore
	candidates reportCandidateStore
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	dir        string
	maxRetries int
	logger     *zap.Logger
}

// NewReportWorker constructs a worker.
func NewReportWorker(repo reportJobStore, candidates reportCandidateStore, storageDir string, maxRetries int, logger *zap.Logger) *ReportWorker {
	if storageDir == "" {
		storageDir = "./exports"
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{
		repo:       repo,
		candidates: candidates,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		dir:        storageDir,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Handle processes one queued report job.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.FindByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if err := w.repo.UpdateStatus(ctx, job.ID, models.ReportStatusProcessing, nil, nil); err != nil {
		return err
	}

	path, err := w.generate(ctx, record)
	if err != nil {
		if job.Attempt >= w.maxRetries {
			msg := err.Error()
			if updateErr := w.repo.UpdateStatus(ctx, job.ID, models.ReportStatusFailed, nil, &msg); updateErr != nil {
				w.logger.Warn("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
		}
		return err
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, models.ReportStatusFinished, &path, nil); err != nil {
		w.logger.Warn("failed to mark report job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}

func (w *ReportWorker) generate(ctx context.Context, job *models.ReportJob) (string, error) {
	shift := ""
	if job.Params.Shift != nil {
		shift = *job.Params.Shift
	}
	candidates, err := w.candidates.ListByScope(ctx, job.Params.CampusID, job.Params.EditalID, shift)
	if err != nil {
		return "", fmt.Errorf("list candidates for report: %w", err)
	}

	table := classificationTable(candidates)
	var content []byte
	switch job.Params.Format {
	case models.ReportFormatPDF:
		content, err = w.pdf.Render(table)
	default:
		content, err = w.csv.Render(table)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	filename := fmt.Sprintf("classificacao_%s_%d.%s", job.ID, time.Now().UTC().Unix(), job.Params.Format)
	path := filepath.Join(w.dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}

// classificationTable flattens candidates into the export table, in the
// registration order the repository already guarantees.
func classificationTable(candidates []models.Candidate) export.Table {
	table := export.Table{
		Title: "Resultado da Classificacao",
		Columns: []export.Column{
			{Name: "rank", Weight: 0.5},
			{Name: "full_name", Weight: 3},
			{Name: "cpf", Weight: 1.5},
			{Name: "shift", Weight: 1},
			{Name: "gender", Weight: 0.7},
			{Name: "status", Weight: 1.2},
			{Name: "category", Weight: 1.5},
		},
	}
	table.Rows = make([][]string, 0, len(candidates))
	for i, c := range candidates {
		category := ""
		if c.Category != nil {
			category = string(*c.Category)
		}
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(i + 1),
			c.FullName,
			c.CPF,
			c.Shift,
			string(c.Gender),
			string(c.Status),
			category,
		})
	}
	return table
}
