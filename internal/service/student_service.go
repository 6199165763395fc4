package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, teacherID, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, teacherID, id string) error
}

type teacherProvisioner interface {
	EnsureProfile(ctx context.Context, userID, displayName string) (*models.Teacher, error)
}

type dashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context, teacherID string)
}

// StudentService handles the teacher's roster.
type StudentService struct {
	repo      studentRepository
	teachers  teacherProvisioner
	guard     *OwnershipGuard
	tx        transactor
	dashboard dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service. dashboard may be nil.
func NewStudentService(repo studentRepository, teachers teacherProvisioner, guard *OwnershipGuard, tx transactor, dashboard dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, teachers: teachers, guard: guard, tx: tx, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, teacherID string, q dto.StudentQuery) ([]models.Student, *models.Pagination, error) {
	if teacherID == "" {
		return []models.Student{}, models.NewPagination(q.Page, q.PageSize, 0), nil
	}
	filter := models.StudentFilter{
		TeacherID: teacherID,
		Search:    strings.TrimSpace(q.Search),
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns one of the teacher's students.
func (s *StudentService) Get(ctx context.Context, teacherID, id string) (*models.Student, error) {
	if teacherID == "" || !isResourceID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student, err := s.repo.FindByID(ctx, teacherID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Create adds a student for userID, provisioning the teacher profile on first use.
func (s *StudentService) Create(ctx context.Context, userID, displayName string, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	var created *models.Student
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		teacher, err := s.teachers.EnsureProfile(ctx, userID, displayName)
		if err != nil {
			return err
		}
		student := &models.Student{
			TeacherID:  teacher.ID,
			Name:       strings.TrimSpace(req.Name),
			AvatarURL:  req.AvatarURL,
			Notes:      req.Notes,
			LessonRate: req.LessonRate,
		}
		if err := s.repo.Create(ctx, student); err != nil {
			return appErrors.Internal(err, "failed to create student")
		}
		created = student
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return created, nil
}

// Update applies a partial update to an owned student.
func (s *StudentService) Update(ctx context.Context, teacherID, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	var updated *models.Student
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Student(ctx, teacherID, id); err != nil {
			return err
		}
		student, err := s.Get(ctx, teacherID, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			student.Name = strings.TrimSpace(*req.Name)
		}
		if req.AvatarURL != nil {
			student.AvatarURL = req.AvatarURL
		}
		if req.Notes != nil {
			student.Notes = req.Notes
		}
		if req.LessonRate != nil {
			student.LessonRate = *req.LessonRate
		}
		if err := s.repo.Update(ctx, student); err != nil {
			return appErrors.Internal(err, "failed to update student")
		}
		updated = student
		return nil
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	if req.LessonRate != nil {
		s.invalidate(ctx, teacherID)
	}
	return updated, nil
}

// Delete removes an owned student together with its lessons and reports.
func (s *StudentService) Delete(ctx context.Context, teacherID, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.guard.Student(ctx, teacherID, id); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, teacherID, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return appErrors.Internal(err, "failed to delete student")
		}
		return nil
	})
	if err != nil {
		return appErrors.FromError(err)
	}
	s.invalidate(ctx, teacherID)
	return nil
}

func (s *StudentService) invalidate(ctx context.Context, teacherID string) {
	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard(ctx, teacherID)
	}
}
