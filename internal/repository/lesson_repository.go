package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

const lessonDetailSelect = `SELECT l.id, l.teacher_id, l.student_id, l.piece_id, l.scheduled_at, l.duration_min, l.status,
        l.actual_min, l.cancel_reason, l.note, l.created_at, l.updated_at,
        s.name AS student_name, s.avatar_url AS student_avatar_url, s.lesson_rate AS student_lesson_rate,
        p.title AS piece_title,
        a.id AS attendance_id, a.status AS attendance_status, a.actual_min AS attendance_actual_min,
        a.reason AS attendance_reason, a.note AS attendance_note,
        a.created_at AS attendance_created_at, a.updated_at AS attendance_updated_at
        FROM lessons l
        JOIN students s ON s.id = l.student_id
        LEFT JOIN pieces p ON p.id = l.piece_id
        LEFT JOIN attendances a ON a.lesson_id = l.id`

const insertLessonQuery = `INSERT INTO lessons (id, teacher_id, student_id, piece_id, scheduled_at, duration_min, status, actual_min, cancel_reason, note, created_at, updated_at)
        VALUES (:id, :teacher_id, :student_id, :piece_id, :scheduled_at, :duration_min, :status, :actual_min, :cancel_reason, :note, :created_at, :updated_at)`

// lessonRow is the flat scan target of lessonDetailSelect.
type lessonRow struct {
	models.Lesson
	StudentName         string                   `db:"student_name"`
	StudentAvatarURL    *string                  `db:"student_avatar_url"`
	StudentLessonRate   int64                    `db:"student_lesson_rate"`
	PieceTitle          *string                  `db:"piece_title"`
	AttendanceID        *string                  `db:"attendance_id"`
	AttendanceStatus    *models.AttendanceStatus `db:"attendance_status"`
	AttendanceActualMin *int                     `db:"attendance_actual_min"`
	AttendanceReason    *string                  `db:"attendance_reason"`
	AttendanceNote      *string                  `db:"attendance_note"`
	AttendanceCreatedAt *time.Time               `db:"attendance_created_at"`
	AttendanceUpdatedAt *time.Time               `db:"attendance_updated_at"`
}

func (row lessonRow) detail() models.LessonDetail {
	d := models.LessonDetail{
		Lesson: row.Lesson,
		Student: models.StudentSummary{
			ID:         row.StudentID,
			Name:       row.StudentName,
			AvatarURL:  row.StudentAvatarURL,
			LessonRate: row.StudentLessonRate,
		},
	}
	if row.PieceID != nil && row.PieceTitle != nil {
		d.Piece = &models.PieceSummary{ID: *row.PieceID, Title: *row.PieceTitle}
	}
	if row.AttendanceID != nil {
		att := &models.Attendance{ID: *row.AttendanceID, LessonID: row.ID, Reason: row.AttendanceReason, Note: row.AttendanceNote}
		if row.AttendanceStatus != nil {
			att.Status = *row.AttendanceStatus
		}
		if row.AttendanceActualMin != nil {
			att.ActualMin = *row.AttendanceActualMin
		}
		if row.AttendanceCreatedAt != nil {
			att.CreatedAt = *row.AttendanceCreatedAt
		}
		if row.AttendanceUpdatedAt != nil {
			att.UpdatedAt = *row.AttendanceUpdatedAt
		}
		d.Attendance = att
	}
	return d
}

// LessonRepository persists lessons and the projections built from them.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// Create inserts a single lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.BulkCreate(ctx, []models.Lesson{*lesson}, func(saved models.Lesson) { *lesson = saved })
}

// BulkCreate inserts lessons one by one on the context executor. Callers wanting
// all-or-nothing semantics run it inside Transactor.WithinTx. onSaved, when set,
// receives each row with its generated fields.
func (r *LessonRepository) BulkCreate(ctx context.Context, lessons []models.Lesson, onSaved func(models.Lesson)) error {
	exec := executor(ctx, r.db)
	now := time.Now().UTC()
	for i := range lessons {
		lesson := lessons[i]
		if lesson.ID == "" {
			lesson.ID = uuid.NewString()
		}
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, exec, insertLessonQuery, &lesson); err != nil {
			return fmt.Errorf("insert lesson: %w", err)
		}
		if onSaved != nil {
			onSaved(lesson)
		}
	}
	return nil
}

// FindDetail returns sql.ErrNoRows when the lesson is missing or owned by another teacher.
func (r *LessonRepository) FindDetail(ctx context.Context, teacherID, id string) (*models.LessonDetail, error) {
	var row lessonRow
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &row, lessonDetailSelect+` WHERE l.id = $1 AND l.teacher_id = $2`, id, teacherID); err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	d := row.detail()
	return &d, nil
}

// List returns lessons matching filter ordered by schedule.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	args := []interface{}{filter.TeacherID}
	conditions := []string{"l.teacher_id = $1"}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("l.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("l.scheduled_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("l.scheduled_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY l.scheduled_at ASC, l.id ASC", lessonDetailSelect, strings.Join(conditions, " AND "))
	var rows []lessonRow
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	details := make([]models.LessonDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.detail())
	}
	return details, nil
}

// Update applies the non-nil fields of params. Returns sql.ErrNoRows when nothing matched.
func (r *LessonRepository) Update(ctx context.Context, teacherID, id string, params models.UpdateLessonParams) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.ScheduledAt != nil {
		set("scheduled_at", *params.ScheduledAt)
	}
	if params.DurationMin != nil {
		set("duration_min", *params.DurationMin)
	}
	if params.Status != nil {
		set("status", string(*params.Status))
	}
	if params.ClearPiece {
		sets = append(sets, "piece_id = NULL")
	} else if params.PieceID != nil {
		set("piece_id", *params.PieceID)
	}
	if params.CancelReason != nil {
		set("cancel_reason", *params.CancelReason)
	}
	if params.ActualMin != nil {
		set("actual_min", *params.ActualMin)
	}
	if params.Note != nil {
		set("note", *params.Note)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id, teacherID)
	query := fmt.Sprintf("UPDATE lessons SET %s WHERE id = $%d AND teacher_id = $%d", strings.Join(sets, ", "), len(args)-1, len(args))
	res, err := executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return expectAffected(res)
}

// Delete hard-deletes the lesson; its attendance record cascades.
func (r *LessonRepository) Delete(ctx context.Context, teacherID, id string) error {
	res, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM lessons WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return expectAffected(res)
}

// ListRated projects the teacher's lessons in the given statuses together with
// the owning student's lesson rate.
func (r *LessonRepository) ListRated(ctx context.Context, teacherID string, statuses []models.LessonStatus, from, to *time.Time) ([]models.RatedLesson, error) {
	raw := make([]string, len(statuses))
	for i, status := range statuses {
		raw[i] = string(status)
	}
	args := []interface{}{teacherID, pq.Array(raw)}
	conditions := []string{"l.teacher_id = $1", "l.status = ANY($2)"}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("l.scheduled_at >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("l.scheduled_at < $%d", len(args)+1))
		args = append(args, *to)
	}

	query := fmt.Sprintf(`SELECT l.id AS lesson_id, l.student_id, s.name AS student_name, l.status, l.scheduled_at, s.lesson_rate AS rate
        FROM lessons l JOIN students s ON s.id = l.student_id
        WHERE %s`, strings.Join(conditions, " AND "))
	var lessons []models.RatedLesson
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list rated lessons: %w", err)
	}
	return lessons, nil
}
