package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

const studentColumns = `id, teacher_id, name, avatar_url, notes, lesson_rate, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns the teacher's students ordered by name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{filter.TeacherID}
	conditions := []string{"teacher_id = $1"}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := strings.Join(conditions, " AND ")

	p := models.NewPagination(filter.Page, filter.PageSize, 0)
	offset := (p.Page - 1) * p.PageSize

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d", studentColumns, where, p.PageSize, offset)
	var students []models.Student
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &total, "SELECT COUNT(*) FROM students WHERE "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns sql.ErrNoRows when the student is missing or owned by another teacher.
func (r *StudentRepository) FindByID(ctx context.Context, teacherID, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND teacher_id = $2`
	var student models.Student
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &student, query, id, teacherID); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, teacher_id, name, avatar_url, notes, lesson_rate, created_at, updated_at)
        VALUES (:id, :teacher_id, :name, :avatar_url, :notes, :lesson_rate, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, avatar_url = :avatar_url, notes = :notes, lesson_rate = :lesson_rate, updated_at = :updated_at
        WHERE id = :id AND teacher_id = :teacher_id`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete hard-deletes the student; lessons and reports cascade.
func (r *StudentRepository) Delete(ctx context.Context, teacherID, id string) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM students WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return expectAffected(res)
}

// expectAffected turns a zero-row write into sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
