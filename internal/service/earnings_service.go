package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type earningsLessonReader interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error)
	ListRated(ctx context.Context, teacherID string, statuses []models.LessonStatus, from, to *time.Time) ([]models.RatedLesson, error)
}

// LessonEarnings is the single pricing rule: the full rate unless the lesson was cancelled.
func LessonEarnings(status models.LessonStatus, rate int64) int64 {
	if status == models.LessonStatusCancelled {
		return 0
	}
	return rate
}

// ComputeDashboard totals COMPLETE lessons overall and within [monthStart, monthEnd),
// and the rate forgone by CANCELLED lessons in that month. Other statuses are ignored.
func ComputeDashboard(lessons []models.RatedLesson, monthStart, monthEnd time.Time) models.DashboardTotals {
	var totals models.DashboardTotals
	for _, l := range lessons {
		inMonth := !l.ScheduledAt.Before(monthStart) && l.ScheduledAt.Before(monthEnd)
		switch l.Status {
		case models.LessonStatusComplete:
			earned := LessonEarnings(l.Status, l.Rate)
			totals.TotalEarnings += earned
			if inMonth {
				totals.CurrentMonthEarnings += earned
			}
		case models.LessonStatusCancelled:
			if inMonth {
				totals.CurrentMonthLoss += l.Rate
			}
		}
	}
	return totals
}

// AggregateByStudent groups COMPLETE lessons by student. The result does not
// depend on input order: rows are sorted by earnings desc, then name, then id.
func AggregateByStudent(lessons []models.RatedLesson) []models.StudentEarnings {
	byID := make(map[string]*models.StudentEarnings)
	for _, l := range lessons {
		if l.Status != models.LessonStatusComplete {
			continue
		}
		row, ok := byID[l.StudentID]
		if !ok {
			row = &models.StudentEarnings{StudentID: l.StudentID, Name: l.StudentName}
			byID[l.StudentID] = row
		}
		row.TotalEarnings += LessonEarnings(l.Status, l.Rate)
		row.LessonCount++
	}

	out := make([]models.StudentEarnings, 0, len(byID))
	for _, row := range byID {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalEarnings != out[j].TotalEarnings {
			return out[i].TotalEarnings > out[j].TotalEarnings
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

// EarningsConfig carries timezone and dashboard cache policy.
type EarningsConfig struct {
	Location *time.Location
	CacheTTL time.Duration
}

// EarningsService computes tuition earnings for a teacher.
type EarningsService struct {
	lessons   earningsLessonReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	config    EarningsConfig
	now       func() time.Time
}

// NewEarningsService constructs the earnings service. cache may be nil.
func NewEarningsService(lessons earningsLessonReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg EarningsConfig) *EarningsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &EarningsService{lessons: lessons, cache: cache, validator: validate, logger: logger, config: cfg, now: time.Now}
}

func dashboardKey(teacherID string, monthStart time.Time) string {
	return fmt.Sprintf("dash:earnings:%s:%s", teacherID, monthStart.Format(dateLayout))
}

func dashboardPattern(teacherID string) string {
	return fmt.Sprintf("dash:earnings:%s:*", teacherID)
}

// Dashboard returns lifetime and current-month totals, and whether they came
// from the cache. A caller without a teacher gets zeros.
func (s *EarningsService) Dashboard(ctx context.Context, teacherID string) (*models.DashboardTotals, bool, error) {
	if teacherID == "" {
		return &models.DashboardTotals{}, false, nil
	}
	now := s.now().In(s.config.Location)
	start, end := MonthRange(now.Year(), int(now.Month()), s.config.Location)

	key := dashboardKey(teacherID, start)
	var cached models.DashboardTotals
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	lessons, err := s.lessons.ListRated(ctx, teacherID, []models.LessonStatus{models.LessonStatusComplete, models.LessonStatusCancelled}, nil, nil)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load earnings")
	}
	totals := ComputeDashboard(lessons, start, end)
	s.cache.Set(ctx, key, totals, s.config.CacheTTL)
	return &totals, false, nil
}

// ByStudent returns per-student earnings for a month, defaulting to the current one.
func (s *EarningsService) ByStudent(ctx context.Context, teacherID string, q dto.MonthQuery) ([]models.StudentEarnings, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month query")
	}
	if teacherID == "" {
		return []models.StudentEarnings{}, nil
	}
	year, month := resolveMonth(q, s.now().In(s.config.Location))
	from, to := MonthRange(year, month, s.config.Location)
	lessons, err := s.lessons.ListRated(ctx, teacherID, []models.LessonStatus{models.LessonStatusComplete}, &from, &to)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load earnings")
	}
	return AggregateByStudent(lessons), nil
}

// Today returns the lessons of one day, each with what it earns.
func (s *EarningsService) Today(ctx context.Context, teacherID string, q dto.TodayQuery) ([]models.LessonEarning, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	if teacherID == "" {
		return []models.LessonEarning{}, nil
	}
	day := s.now()
	if q.Date != "" {
		parsed, err := time.ParseInLocation(dateLayout, q.Date, s.config.Location)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
		}
		day = parsed
	}
	from, to := DayRange(day, s.config.Location)
	lessons, err := s.lessons.List(ctx, models.LessonFilter{TeacherID: teacherID, From: &from, To: &to})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list lessons")
	}
	out := make([]models.LessonEarning, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, models.LessonEarning{LessonDetail: l, Earnings: LessonEarnings(l.Status, l.Student.LessonRate)})
	}
	return out, nil
}

// InvalidateDashboard drops every cached dashboard of the teacher.
func (s *EarningsService) InvalidateDashboard(ctx context.Context, teacherID string) {
	if teacherID == "" {
		return
	}
	s.cache.Invalidate(ctx, dashboardPattern(teacherID))
}
