package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/pkg/config"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type reportStudentReader interface {
	FindByID(ctx context.Context, teacherID, id string) (*models.Student, error)
}

type reportTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type reportLessonReader interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
}

type monthlyReportRepository interface {
	Find(ctx context.Context, studentID string, month, year int) (*models.MonthlyReport, error)
	Upsert(ctx context.Context, params models.UpsertReportParams) (*models.MonthlyReport, error)
}

// ReportConfig selects the tuition rate and the calendar timezone.
type ReportConfig struct {
	Location   *time.Location
	RateSource string
}

// ReportService assembles monthly student reports.
type ReportService struct {
	students  reportStudentReader
	teachers  reportTeacherReader
	lessons   reportLessonReader
	reports   monthlyReportRepository
	guard     *OwnershipGuard
	tx        transactor
	validator *validator.Validate
	logger    *zap.Logger
	config    ReportConfig
}

// NewReportService constructs the report service.
func NewReportService(students reportStudentReader, teachers reportTeacherReader, lessons reportLessonReader, reports monthlyReportRepository, guard *OwnershipGuard, tx transactor, validate *validator.Validate, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RateSource != config.RateSourceStudent {
		cfg.RateSource = config.RateSourceTeacher
	}
	return &ReportService{
		students:  students,
		teachers:  teachers,
		lessons:   lessons,
		reports:   reports,
		guard:     guard,
		tx:        tx,
		validator: validate,
		logger:    logger,
		config:    cfg,
	}
}

// Summarize counts COMPLETE lessons and bills each at rate.
func Summarize(lessons []models.LessonDetail, rate int64) models.TuitionSummary {
	sessions := 0
	for _, l := range lessons {
		if l.Status == models.LessonStatusComplete {
			sessions++
		}
	}
	return models.TuitionSummary{
		TotalSessions: sessions,
		TotalTuition:  int64(sessions) * rate,
		Rate:          rate,
	}
}

// StudentReport returns the narrative, lessons, week buckets and tuition of one student's month.
func (s *ReportService) StudentReport(ctx context.Context, teacherID, studentID string, q dto.ReportQuery) (*models.StudentReport, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report query")
	}
	if teacherID == "" || !isResourceID(studentID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	student, err := s.students.FindByID(ctx, teacherID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Internal(err, "failed to load teacher")
	}

	report, err := s.reports.Find(ctx, studentID, q.Month, q.Year)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load report")
		}
		report = nil
	}

	from, to := MonthRange(q.Year, q.Month, s.config.Location)
	lessons, err := s.lessons.List(ctx, models.LessonFilter{TeacherID: teacherID, StudentID: studentID, From: &from, To: &to})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list lessons")
	}
	if lessons == nil {
		lessons = []models.LessonDetail{}
	}

	rate := teacher.PerSessionRate
	if s.config.RateSource == config.RateSourceStudent {
		rate = student.LessonRate
	}
	summary := Summarize(lessons, rate)
	summary.RateSource = s.config.RateSource
	summary.Currency = teacher.Currency

	return &models.StudentReport{
		Month:   q.Month,
		Year:    q.Year,
		Report:  report,
		Student: *student,
		Lessons: lessons,
		Weeks:   BucketWeeks(lessons, q.Year, q.Month, s.config.Location),
		Summary: summary,
	}, nil
}

// Upsert merges the narrative fields into the (student, month, year) report.
// Omitted fields keep their stored values.
func (s *ReportService) Upsert(ctx context.Context, teacherID, studentID string, req dto.UpsertReportRequest) (*models.MonthlyReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	var stored *models.MonthlyReport
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Student(ctx, teacherID, studentID); err != nil {
			return err
		}
		report, err := s.reports.Upsert(ctx, models.UpsertReportParams{
			StudentID:     studentID,
			Month:         req.Month,
			Year:          req.Year,
			Summary:       req.Summary,
			Comments:      req.Comments,
			NextMonthPlan: req.NextMonthPlan,
		})
		if err != nil {
			return appErrors.Internal(err, "failed to save report")
		}
		stored = report
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return stored, nil
}
