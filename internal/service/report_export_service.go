package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/report"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
	"github.com/sma-engine/masterschedule/pkg/export"
	"github.com/sma-engine/masterschedule/pkg/storage"
)

type reportRunStore interface {
	FindByID(ctx context.Context, id string) (*models.Run, error)
}

type reportSectionStore interface {
	ListByRun(ctx context.Context, runID string) ([]models.Section, error)
}

type reportFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportExportConfig tunes how a rendered run report is named and addressed.
type ReportExportConfig struct {
	APIPrefix string
}

// ReportExportService renders a run's summary and committed sections to CSV
// or PDF and hands back a signed, expiring download link. Generation is
// synchronous: a single run's section list is small enough that a worker
// queue would only add latency, so this never touches pkg/jobs.
type ReportExportService struct {
	runs     reportRunStore
	sections reportSectionStore
	storage  reportFileStorage
	signer   *storage.SignedURLSigner
	csv      csvRenderer
	pdf      pdfRenderer
	cfg      ReportExportConfig
	logger   *zap.Logger
}

// NewReportExportService wires the renderers, storage, and signer together.
func NewReportExportService(
	runs reportRunStore,
	sections reportSectionStore,
	fileStore reportFileStorage,
	signer *storage.SignedURLSigner,
	cfg ReportExportConfig,
	logger *zap.Logger,
	csv csvRenderer,
	pdf pdfRenderer,
) *ReportExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportExportService{
		runs:     runs,
		sections: sections,
		storage:  fileStore,
		signer:   signer,
		csv:      csv,
		pdf:      pdf,
		cfg:      cfg,
		logger:   logger,
	}
}

// Generate renders the run's committed sections and summary to the requested
// format, persists the file, and returns a signed download link.
func (s *ReportExportService) Generate(ctx context.Context, runID string, req dto.ExportReportRequest) (*dto.ExportReportResponse, error) {
	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	if run.Status != models.RunStatusCommitted {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "run must be committed before it can be exported")
	}

	sections, err := s.sections.ListByRun(ctx, runID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run sections")
	}

	var summary report.Summary
	if run.SummaryJSON != "" {
		if err := json.Unmarshal([]byte(run.SummaryJSON), &summary); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode run summary")
		}
	}

	dataset := buildSectionDataset(sections, summary)

	var rendered []byte
	var ext string
	switch req.Format {
	case dto.ReportFormatCSV:
		rendered, err = s.csv.Render(dataset)
		ext = "csv"
	case dto.ReportFormatPDF:
		rendered, err = s.pdf.Render(dataset, fmt.Sprintf("Schedule Run %s", runID))
		ext = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("runs/%s/report-%d.%s", runID, time.Now().UTC().Unix(), ext)
	relPath, err := s.storage.Save(filename, rendered)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist rendered report")
	}

	token, expiresAt, err := s.signer.Generate(runID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Sugar().Infow("run report rendered", "runId", runID, "format", req.Format, "path", relPath)

	return &dto.ExportReportResponse{
		DownloadURL: fmt.Sprintf("%s/reports/download/%s", strings.TrimSuffix(s.cfg.APIPrefix, "/"), token),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		Format:      req.Format,
	}, nil
}

// ResolveDownload validates a signed token and opens the underlying file.
func (s *ReportExportService) ResolveDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "download link invalid or expired")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "rendered report not found")
	}
	return file, relPath, nil
}

// Cleanup removes rendered reports older than ttl, for a periodic sweep.
func (s *ReportExportService) Cleanup(ttl time.Duration) ([]string, error) {
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, fmt.Errorf("cleanup rendered reports: %w", err)
	}
	return deleted, nil
}

func buildSectionDataset(sections []models.Section, summary report.Summary) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"period", "courseId", "room", "primaryTeacherId", "coTeacherId", "environment", "maxSize"},
	}
	for _, sec := range sections {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"period":           sec.Period,
			"courseId":         sec.CourseID,
			"room":             sec.RoomNumber,
			"primaryTeacherId": sec.PrimaryTeacherID,
			"coTeacherId":      sec.CoTeacherID,
			"environment":      sec.Environment,
			"maxSize":          fmt.Sprintf("%d", sec.MaxSize),
		})
	}
	if len(summary.LunchAnomalies) > 0 {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"period":   "SUMMARY",
			"courseId": fmt.Sprintf("%d students with lunch anomalies", len(summary.LunchAnomalies)),
		})
	}
	if len(summary.MissingRequirements) > 0 {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"period":   "SUMMARY",
			"courseId": fmt.Sprintf("%d students missing a required course", len(summary.MissingRequirements)),
		})
	}
	return dataset
}
