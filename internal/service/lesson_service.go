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
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type lessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	BulkCreate(ctx context.Context, lessons []models.Lesson, onSaved func(models.Lesson)) error
	FindDetail(ctx context.Context, teacherID, id string) (*models.LessonDetail, error)
	List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
	Update(ctx context.Context, teacherID, id string, params models.UpdateLessonParams) error
	Delete(ctx context.Context, teacherID, id string) error
}

// LessonConfig carries lesson scheduling policy.
type LessonConfig struct {
	Location      *time.Location
	DefaultStatus models.LessonStatus
}

// LessonService implements the lesson lifecycle: scheduling, recurring
// expansion, partial updates and calendar reads.
type LessonService struct {
	repo      lessonRepository
	guard     *OwnershipGuard
	tx        transactor
	dashboard dashboardInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    LessonConfig
	now       func() time.Time
}

// NewLessonService constructs the lesson service. dashboard and metrics may be nil.
func NewLessonService(repo lessonRepository, guard *OwnershipGuard, tx transactor, dashboard dashboardInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg LessonConfig) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if !cfg.DefaultStatus.Valid() {
		cfg.DefaultStatus = models.LessonStatusPending
	}
	return &LessonService{
		repo:      repo,
		guard:     guard,
		tx:        tx,
		dashboard: dashboard,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Create schedules one lesson for an owned student.
func (s *LessonService) Create(ctx context.Context, teacherID string, req dto.CreateLessonRequest) (*models.LessonDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	var detail *models.LessonDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Student(ctx, teacherID, req.StudentID); err != nil {
			return err
		}
		if req.PieceID != nil {
			if err := s.guard.Piece(ctx, teacherID, *req.PieceID); err != nil {
				return err
			}
		}
		lesson := &models.Lesson{
			TeacherID:   teacherID,
			StudentID:   req.StudentID,
			PieceID:     req.PieceID,
			ScheduledAt: req.Date.UTC(),
			DurationMin: req.DurationMin,
			Status:      s.config.DefaultStatus,
		}
		if err := s.repo.Create(ctx, lesson); err != nil {
			return appErrors.Internal(err, "failed to create lesson")
		}
		var err error
		detail, err = s.load(ctx, teacherID, lesson.ID)
		return err
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	s.afterWrite(ctx, teacherID)
	s.metrics.LessonsCreated("single", 1)
	return detail, nil
}

// CreateRecurring expands a weekly rule into lessons and inserts them all or none.
func (s *LessonService) CreateRecurring(ctx context.Context, teacherID string, req dto.CreateRecurringLessonsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring lesson payload")
	}
	if teacherID == "" {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	loc := s.config.Location
	start, err := time.ParseInLocation(dateLayout, req.StartDate, loc)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start date")
	}
	clock, err := time.Parse("15:04", req.TimeOfDay)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time of day")
	}

	dates := ExpandWeekly(start, time.Weekday(req.DayOfWeek), clock.Hour(), clock.Minute(), req.RecurrenceMonths, loc)
	lessons := make([]models.Lesson, 0, len(dates))
	for _, at := range dates {
		lessons = append(lessons, models.Lesson{
			TeacherID:   teacherID,
			StudentID:   req.StudentID,
			PieceID:     req.PieceID,
			ScheduledAt: at.UTC(),
			DurationMin: req.DurationMin,
			Status:      s.config.DefaultStatus,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Student(ctx, teacherID, req.StudentID); err != nil {
			return err
		}
		if req.PieceID != nil {
			if err := s.guard.Piece(ctx, teacherID, *req.PieceID); err != nil {
				return err
			}
		}
		if err := s.repo.BulkCreate(ctx, lessons, nil); err != nil {
			return appErrors.Internal(err, "failed to create recurring lessons")
		}
		return nil
	})
	if err != nil {
		return 0, appErrors.FromError(err)
	}

	s.logger.Info("recurring lessons created",
		zap.String("teacher_id", teacherID),
		zap.String("student_id", req.StudentID),
		zap.Int("count", len(lessons)))
	s.afterWrite(ctx, teacherID)
	s.metrics.LessonsCreated("recurring", len(lessons))
	return len(lessons), nil
}

// Update applies the provided fields to an owned lesson. An empty pieceId detaches the piece.
func (s *LessonService) Update(ctx context.Context, teacherID, id string, req dto.UpdateLessonRequest) (*models.LessonDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	params := models.UpdateLessonParams{
		DurationMin:  req.DurationMin,
		CancelReason: req.CancelReason,
		ActualMin:    req.ActualMin,
		Note:         req.Note,
	}
	if req.Date != nil {
		at := req.Date.UTC()
		params.ScheduledAt = &at
	}
	if req.Status != nil {
		status, ok := models.ParseLessonStatus(*req.Status)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid lesson status")
		}
		params.Status = &status
	}
	if req.PieceID != nil {
		if *req.PieceID == "" {
			params.ClearPiece = true
		} else if err := s.validator.Var(*req.PieceID, "uuid"); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid piece id")
		} else {
			params.PieceID = req.PieceID
		}
	}

	var detail *models.LessonDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Lesson(ctx, teacherID, id); err != nil {
			return err
		}
		if params.PieceID != nil {
			if err := s.guard.Piece(ctx, teacherID, *params.PieceID); err != nil {
				return err
			}
		}
		if !params.Empty() {
			if err := s.repo.Update(ctx, teacherID, id, params); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
				}
				return appErrors.Internal(err, "failed to update lesson")
			}
		}
		var err error
		detail, err = s.load(ctx, teacherID, id)
		return err
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	s.afterWrite(ctx, teacherID)
	return detail, nil
}

// Delete removes an owned lesson and returns it as it was.
func (s *LessonService) Delete(ctx context.Context, teacherID, id string) (*models.LessonDetail, error) {
	var detail *models.LessonDetail
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Lesson(ctx, teacherID, id); err != nil {
			return err
		}
		var err error
		if detail, err = s.load(ctx, teacherID, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, teacherID, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
			}
			return appErrors.Internal(err, "failed to delete lesson")
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	s.afterWrite(ctx, teacherID)
	return detail, nil
}

// Get returns one owned lesson.
func (s *LessonService) Get(ctx context.Context, teacherID, id string) (*models.LessonDetail, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	return s.load(ctx, teacherID, id)
}

// List filters the teacher's lessons. Date bounds are inclusive calendar days.
func (s *LessonService) List(ctx context.Context, teacherID string, q dto.LessonQuery) ([]models.LessonDetail, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson query")
	}
	filter := models.LessonFilter{TeacherID: teacherID, StudentID: q.StudentID}
	if q.Status != "" {
		filter.Status, _ = models.ParseLessonStatus(q.Status)
	}
	if q.From != "" {
		from, err := s.parseDay(q.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := s.parseDay(q.To)
		if err != nil {
			return nil, err
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	return s.list(ctx, filter)
}

// ListInRange returns lessons scheduled between two inclusive dates.
func (s *LessonService) ListInRange(ctx context.Context, teacherID string, q dto.LessonRangeQuery) ([]models.LessonDetail, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid range query")
	}
	from, err := s.parseDay(q.From)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDay(q.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	to = to.AddDate(0, 0, 1)
	return s.list(ctx, models.LessonFilter{TeacherID: teacherID, From: &from, To: &to})
}

// ListForMonth returns the lessons of a calendar month, defaulting to the current one.
func (s *LessonService) ListForMonth(ctx context.Context, teacherID string, q dto.MonthQuery) ([]models.LessonDetail, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month query")
	}
	year, month := resolveMonth(q, s.now().In(s.config.Location))
	from, to := MonthRange(year, month, s.config.Location)
	return s.list(ctx, models.LessonFilter{TeacherID: teacherID, From: &from, To: &to})
}

func (s *LessonService) list(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	if filter.TeacherID == "" {
		return []models.LessonDetail{}, nil
	}
	lessons, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list lessons")
	}
	if lessons == nil {
		lessons = []models.LessonDetail{}
	}
	return lessons, nil
}

func (s *LessonService) load(ctx context.Context, teacherID, id string) (*models.LessonDetail, error) {
	if !isResourceID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	detail, err := s.repo.FindDetail(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to load lesson")
	}
	return detail, nil
}

func (s *LessonService) parseDay(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, raw, s.config.Location)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	return t, nil
}

func (s *LessonService) afterWrite(ctx context.Context, teacherID string) {
	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard(ctx, teacherID)
	}
}

// resolveMonth fills zero month/year from now.
func resolveMonth(q dto.MonthQuery, now time.Time) (int, int) {
	year, month := q.Year, q.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month
}
