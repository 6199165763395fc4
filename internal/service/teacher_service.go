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

type teacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Ensure(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error)
	Update(ctx context.Context, teacher *models.Teacher) error
}

// TeacherService manages the teacher profile attached to a user account.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// EnsureProfile returns the user's teacher profile, creating it on first call.
func (s *TeacherService) EnsureProfile(ctx context.Context, userID, displayName string) (*models.Teacher, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	teacher, err := s.repo.Ensure(ctx, &models.Teacher{
		UserID:      userID,
		DisplayName: strings.TrimSpace(displayName),
		Currency:    models.DefaultCurrency,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to ensure teacher profile")
	}
	return teacher, nil
}

// FindIDByUserID resolves the teacher id of userID, "" when no profile exists.
func (s *TeacherService) FindIDByUserID(ctx context.Context, userID string) (string, error) {
	teacher, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", appErrors.Internal(err, "failed to resolve teacher")
	}
	return teacher.ID, nil
}

// Get returns the profile by teacher id.
func (s *TeacherService) Get(ctx context.Context, teacherID string) (*models.Teacher, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	teacher, err := s.repo.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Internal(err, "failed to load teacher")
	}
	return teacher, nil
}

// Update applies a partial profile update.
func (s *TeacherService) Update(ctx context.Context, teacherID string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.Get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		teacher.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.PerSessionRate != nil {
		teacher.PerSessionRate = *req.PerSessionRate
	}
	if req.Currency != nil {
		teacher.Currency = strings.ToUpper(*req.Currency)
	}
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Internal(err, "failed to update teacher")
	}
	return teacher, nil
}
