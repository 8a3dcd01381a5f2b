package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IDINaXI/Nutrio/internal/blob"
	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/validation"
	"github.com/google/uuid"
)

var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidDate      = errors.New("invalid date format")
	ErrInvalidDateRange = errors.New("from date must be before to date")
	ErrRangeTooLarge    = errors.New("date range too large")
	ErrReportNotFound   = errors.New("report not found")
	ErrUserNotFound     = errors.New("user not found")
)

type Options struct {
	MaxRangeDays    int
	FontPath        string
	PresignTTL      time.Duration
	PublicBaseURL   string
	PreferPublicURL bool
}

// Service handles reports business logic
type Service struct {
	reports   storage.ReportsStorage
	generator *Generator
	blobStore blob.Store // nil: local mode, байты хранятся в БД
	opts      Options
	log       *logger.Logger
}

func NewService(reports storage.ReportsStorage, source DataSource, blobStore blob.Store, opts Options, log *logger.Logger) *Service {
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 366
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	return &Service{
		reports:   reports,
		generator: NewGenerator(source, opts.FontPath),
		blobStore: blobStore,
		opts:      opts,
		log:       logger.OrNop(log).Named("reports"),
	}
}

func (s *Service) MaxRangeDays() int {
	return s.opts.MaxRangeDays
}

func (s *Service) localMode() bool {
	return s.blobStore == nil
}

// CreateReport renders a report and stores it in S3 or in the main storage.
func (s *Service) CreateReport(ctx context.Context, userID int64, req CreateReportRequest) (*storage.ReportMeta, error) {
	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	fromDate, err := validation.ParseDate(req.From)
	if err != nil {
		return nil, ErrInvalidDate
	}
	toDate, err := validation.ParseDate(req.To)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if fromDate.After(toDate) {
		return nil, ErrInvalidDateRange
	}
	if int(toDate.Sub(fromDate).Hours()/24) > s.opts.MaxRangeDays {
		return nil, ErrRangeTooLarge
	}

	data, err := s.generator.Generate(ctx, userID, req.From, req.To, req.Format)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	report := &storage.ReportMeta{
		ID:        uuid.New(),
		UserID:    userID,
		Format:    req.Format,
		FromDate:  req.From,
		ToDate:    req.To,
		SizeBytes: int64(len(data)),
		Status:    StatusReady,
	}

	if s.localMode() {
		report.Data = data
	} else {
		objectKey := fmt.Sprintf("reports/%d/%s_%s_%s.%s", userID, req.From, req.To, report.ID.String(), req.Format)
		if _, err := s.blobStore.PutObject(ctx, objectKey, data, contentType(req.Format)); err != nil {
			return nil, fmt.Errorf("failed to upload report: %w", err)
		}
		report.ObjectKey = &objectKey
	}

	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	s.log.Infow("report created", "user_id", userID, "report_id", report.ID, "format", report.Format, "size_bytes", report.SizeBytes)
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, userID int64, id uuid.UUID) (*storage.ReportMeta, error) {
	meta, err := s.reports.GetReport(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return meta, nil
}

func (s *Service) ListReports(ctx context.Context, userID int64, limit, offset int) ([]storage.ReportMeta, error) {
	items, err := s.reports.ListReports(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return items, nil
}

func (s *Service) DeleteReport(ctx context.Context, userID int64, id uuid.UUID) error {
	meta, err := s.GetReport(ctx, userID, id)
	if err != nil {
		return err
	}

	if !s.localMode() && meta.ObjectKey != nil {
		if err := s.blobStore.DeleteObject(ctx, *meta.ObjectKey); err != nil {
			// метаданные всё равно удаляем
			s.log.Warnw("failed to delete report object", "report_id", id, "key", *meta.ObjectKey, "error", err)
		}
	}

	if err := s.reports.DeleteReport(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}
	return nil
}

// DownloadURL returns the API endpoint in local mode, or a public or presigned URL for s3.
func (s *Service) DownloadURL(ctx context.Context, meta *storage.ReportMeta, baseURL string) (string, error) {
	if meta.ObjectKey == nil {
		return fmt.Sprintf("%s/v1/reports/%s/download", strings.TrimSuffix(baseURL, "/"), meta.ID.String()), nil
	}
	if s.localMode() {
		return "", fmt.Errorf("report %s is stored in object storage, but blob store is not configured", meta.ID)
	}

	if s.opts.PreferPublicURL && s.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + *meta.ObjectKey, nil
	}

	url, err := s.blobStore.PresignGet(ctx, *meta.ObjectKey, s.opts.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (s *Service) toDTO(ctx context.Context, meta *storage.ReportMeta, baseURL string) ReportDTO {
	url, err := s.DownloadURL(ctx, meta, baseURL)
	if err != nil {
		s.log.Warnw("failed to build download url", "report_id", meta.ID, "error", err)
	}
	return ReportDTO{
		ID:          meta.ID,
		Format:      meta.Format,
		From:        meta.FromDate,
		To:          meta.ToDate,
		DownloadURL: url,
		SizeBytes:   meta.SizeBytes,
		Status:      meta.Status,
		CreatedAt:   meta.CreatedAt,
	}
}
