package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, att *models.Attendance) error
}

type lessonUpdater interface {
	Update(ctx context.Context, teacherID, id string, params models.UpdateLessonParams) error
}

// AttendanceService records how a lesson was attended and keeps the lesson's
// status in step with it.
type AttendanceService struct {
	attendance attendanceRepository
	lessons    lessonUpdater
	guard      *OwnershipGuard
	tx         transactor
	dashboard  dashboardInvalidator
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs the attendance service. dashboard and metrics may be nil.
func NewAttendanceService(attendance attendanceRepository, lessons lessonUpdater, guard *OwnershipGuard, tx transactor, dashboard dashboardInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		lessons:    lessons,
		guard:      guard,
		tx:         tx,
		dashboard:  dashboard,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// Mark upserts the lesson's attendance. PRESENT and MAKEUP complete the lesson,
// ABSENT cancels it with the reason as cancel reason.
func (s *AttendanceService) Mark(ctx context.Context, teacherID, lessonID string, req dto.MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status, ok := models.ParseAttendanceStatus(req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}

	att := &models.Attendance{
		LessonID:  lessonID,
		Status:    status,
		ActualMin: req.ActualMin,
		Reason:    req.Reason,
		Note:      req.Note,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Lesson(ctx, teacherID, lessonID); err != nil {
			return err
		}
		if err := s.attendance.Upsert(ctx, att); err != nil {
			return appErrors.Internal(err, "failed to save attendance")
		}

		lessonStatus := status.LessonStatus()
		actual := req.ActualMin
		params := models.UpdateLessonParams{Status: &lessonStatus, ActualMin: &actual}
		if status == models.AttendanceAbsent && req.Reason != nil {
			params.CancelReason = req.Reason
		}
		if err := s.lessons.Update(ctx, teacherID, lessonID, params); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
			}
			return appErrors.Internal(err, "failed to update lesson status")
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard(ctx, teacherID)
	}
	s.metrics.AttendanceMarked(string(status))
	return att, nil
}
