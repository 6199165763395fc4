package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
	"github.com/noah-isme/studio-lessons-api/pkg/export"
	"github.com/noah-isme/studio-lessons-api/pkg/storage"
)

type fileStorage interface {
	Save(ownerID, filename string, data []byte) (string, error)
	Open(key string) (*os.File, error)
	Delete(key string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type studentReporter interface {
	StudentReport(ctx context.Context, teacherID, studentID string, q dto.ReportQuery) (*models.StudentReport, error)
}

// ExportConfig configures download links.
type ExportConfig struct {
	APIPrefix string
	Location  *time.Location
}

// ExportService renders monthly reports to files and hands out signed download links.
type ExportService struct {
	reports   studentReporter
	storage   fileStorage
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ExportConfig
	now       func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(reports studentReporter, store fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportService{reports: reports, storage: store, signer: signer, metrics: metrics, validator: validate, logger: logger, config: cfg, now: time.Now}
}

// Export renders the student's monthly report and returns a signed link to it.
func (s *ExportService) Export(ctx context.Context, teacherID, studentID string, req dto.ExportReportRequest) (*models.ReportExport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = export.FormatPDF
	}
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}

	report, err := s.reports.StudentReport(ctx, teacherID, studentID, dto.ReportQuery{Month: req.Month, Year: req.Year})
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(BuildReportDocument(report, s.config.Location))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}

	filename := fmt.Sprintf("report_%s_%04d-%02d_%d.%s", sanitizeFilename(report.Student.Name), report.Year, report.Month, s.now().Unix(), renderer.Extension())
	key, err := s.storage.Save(teacherID, filename, data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(teacherID, key)
	if err != nil {
		if delErr := s.storage.Delete(key); delErr != nil {
			s.logger.Warn("failed to remove unsigned export", zap.String("key", key), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "failed to sign export link")
	}

	s.metrics.ReportExported(format)
	s.logger.Info("report exported",
		zap.String("teacher_id", teacherID),
		zap.String("student_id", studentID),
		zap.String("format", format),
		zap.Int("bytes", len(data)))

	return &models.ReportExport{
		Token:     token,
		URL:       strings.TrimRight(s.config.APIPrefix, "/") + "/export/" + token,
		Filename:  filename,
		Format:    format,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve verifies a download token and describes the file it points to.
func (s *ExportService) Resolve(token string) (*models.ExportFile, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrExportExpired, "export link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	name := filepath.Base(claims.Key)
	return &models.ExportFile{Key: claims.Key, Filename: name, ContentType: contentTypeFor(name)}, nil
}

// Open returns the stored bytes behind a resolved export.
func (s *ExportService) Open(file *models.ExportFile) (*os.File, error) {
	f, err := s.storage.Open(file.Key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Internal(err, "failed to open export")
	}
	return f, nil
}

// Cleanup removes exports older than the link lifetime.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.signer.TTL())
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (s *ExportService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.Cleanup()
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("export cleanup", zap.Int("removed", len(removed)))
				}
			}
		}
	}()
}

// BuildReportDocument lays out a monthly report for rendering.
func BuildReportDocument(report *models.StudentReport, loc *time.Location) export.Document {
	if loc == nil {
		loc = time.UTC
	}
	doc := export.Document{
		Title: fmt.Sprintf("Monthly report %02d/%d", report.Month, report.Year),
		Header: []export.Field{
			{Label: "Student", Value: report.Student.Name},
			{Label: "Month", Value: fmt.Sprintf("%02d/%d", report.Month, report.Year)},
		},
		Table: export.Table{Headers: []string{"Week", "Date", "Time", "Duration (min)", "Piece", "Status", "Attendance"}},
	}

	for _, week := range report.Weeks {
		for _, l := range week.Lessons {
			at := l.ScheduledAt.In(loc)
			piece := ""
			if l.Piece != nil {
				piece = l.Piece.Title
			}
			attendance := ""
			if l.Attendance != nil {
				attendance = string(l.Attendance.Status)
			}
			doc.Table.Rows = append(doc.Table.Rows, []string{
				strconv.Itoa(week.Week),
				at.Format(dateLayout),
				at.Format("15:04"),
				strconv.Itoa(l.DurationMin),
				piece,
				string(l.Status),
				attendance,
			})
		}
	}

	sum := report.Summary
	doc.Footer = []export.Field{
		{Label: "Total sessions", Value: strconv.Itoa(sum.TotalSessions)},
		{Label: "Rate", Value: fmt.Sprintf("%d %s", sum.Rate, sum.Currency)},
		{Label: "Total tuition", Value: fmt.Sprintf("%d %s", sum.TotalTuition, sum.Currency)},
	}
	if r := report.Report; r != nil {
		doc.Remarks = appendRemark(doc.Remarks, "Summary", r.Summary)
		doc.Remarks = appendRemark(doc.Remarks, "Comments", r.Comments)
		doc.Remarks = appendRemark(doc.Remarks, "Next month", r.NextMonthPlan)
	}
	return doc
}

func appendRemark(fields []export.Field, label string, value *string) []export.Field {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fields
	}
	return append(fields, export.Field{Label: label, Value: *value})
}

func contentTypeFor(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "application/octet-stream"
	}
	renderer, err := export.ForFormat(ext)
	if err != nil {
		return "application/octet-stream"
	}
	return renderer.ContentType()
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
