package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

// AttendanceRepository stores the one-per-lesson attendance record.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert creates or replaces the attendance of att.LessonID and loads the stored row into att.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO attendances (id, lesson_id, status, actual_min, reason, note, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        ON CONFLICT (lesson_id) DO UPDATE
        SET status = EXCLUDED.status,
            actual_min = EXCLUDED.actual_min,
            reason = EXCLUDED.reason,
            note = EXCLUDED.note,
            updated_at = EXCLUDED.updated_at
        RETURNING id, lesson_id, status, actual_min, reason, note, created_at, updated_at`
	var stored models.Attendance
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &stored, query,
		att.ID, att.LessonID, string(att.Status), att.ActualMin, att.Reason, att.Note, now); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	*att = stored
	return nil
}

// FindByLessonID returns sql.ErrNoRows when the lesson has no attendance yet.
func (r *AttendanceRepository) FindByLessonID(ctx context.Context, lessonID string) (*models.Attendance, error) {
	const query = `SELECT id, lesson_id, status, actual_min, reason, note, created_at, updated_at FROM attendances WHERE lesson_id = $1`
	var att models.Attendance
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &att, query, lessonID); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return &att, nil
}
