package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

const teacherColumns = `id, user_id, display_name, per_session_rate, currency, created_at, updated_at`

// TeacherRepository manages teacher profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByUserID returns sql.ErrNoRows when the user has no profile yet.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE user_id = $1`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByID returns sql.ErrNoRows when no profile has the id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &teacher, query, id); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return &teacher, nil
}

// Ensure inserts the profile unless one exists for the user and returns the stored row.
func (r *TeacherRepository) Ensure(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	if teacher.Currency == "" {
		teacher.Currency = models.DefaultCurrency
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const insert = `INSERT INTO teachers (id, user_id, display_name, per_session_rate, currency, created_at, updated_at)
        VALUES (:id, :user_id, :display_name, :per_session_rate, :currency, :created_at, :updated_at)
        ON CONFLICT (user_id) DO NOTHING`
	exec := executor(ctx, r.db)
	if _, err := sqlx.NamedExecContext(ctx, exec, insert, teacher); err != nil {
		return nil, fmt.Errorf("ensure teacher: %w", err)
	}

	stored, err := r.FindByUserID(ctx, teacher.UserID)
	if err != nil {
		return nil, fmt.Errorf("load ensured teacher: %w", err)
	}
	return stored, nil
}

// Update persists display name, rate and currency.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET display_name = :display_name, per_session_rate = :per_session_rate, currency = :currency, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}
