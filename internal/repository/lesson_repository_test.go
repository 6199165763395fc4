package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

var lessonRowColumns = []string{
	"id", "teacher_id", "student_id", "piece_id", "scheduled_at", "duration_min", "status",
	"actual_min", "cancel_reason", "note", "created_at", "updated_at",
	"student_name", "student_avatar_url", "student_lesson_rate", "piece_title",
	"attendance_id", "attendance_status", "attendance_actual_min", "attendance_reason", "attendance_note",
	"attendance_created_at", "attendance_updated_at",
}

func TestLessonRepositoryListMapsJoins(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	at := time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows := sqlmock.NewRows(lessonRowColumns).
		AddRow("lesson-1", "teacher-1", "student-1", "piece-1", at, 60, "COMPLETE", 55, nil, nil, at, at,
			"An", nil, int64(500000), "Minuet in G",
			"att-1", "PRESENT", 55, nil, "good", at, at).
		AddRow("lesson-2", "teacher-1", "student-1", nil, at.AddDate(0, 0, 7), 45, "PENDING", nil, nil, nil, at, at,
			"An", nil, int64(500000), nil,
			nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.teacher_id = $1 AND l.student_id = $2 AND l.scheduled_at >= $3 AND l.scheduled_at < $4 ORDER BY l.scheduled_at ASC, l.id ASC")).
		WithArgs("teacher-1", "student-1", from, to).
		WillReturnRows(rows)

	lessons, err := repo.List(context.Background(), models.LessonFilter{TeacherID: "teacher-1", StudentID: "student-1", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, lessons, 2)

	first := lessons[0]
	assert.Equal(t, models.LessonStatusComplete, first.Status)
	assert.Equal(t, "An", first.Student.Name)
	require.NotNil(t, first.Piece)
	assert.Equal(t, "Minuet in G", first.Piece.Title)
	require.NotNil(t, first.Attendance)
	assert.Equal(t, models.AttendancePresent, first.Attendance.Status)
	assert.Equal(t, "lesson-1", first.Attendance.LessonID)

	assert.Nil(t, lessons[1].Piece)
	assert.Nil(t, lessons[1].Attendance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryBulkCreateInTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)
	tx := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lessons").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO lessons").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	lessons := []models.Lesson{
		{TeacherID: "teacher-1", StudentID: "student-1", DurationMin: 60, Status: models.LessonStatusPending},
		{TeacherID: "teacher-1", StudentID: "student-1", DurationMin: 60, Status: models.LessonStatusPending},
	}
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.BulkCreate(ctx, lessons, nil)
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateFillsGeneratedFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").WillReturnResult(sqlmock.NewResult(0, 1))

	lesson := &models.Lesson{TeacherID: "teacher-1", StudentID: "student-1", DurationMin: 30, Status: models.LessonStatusPending}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.NotEmpty(t, lesson.ID)
	assert.False(t, lesson.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryUpdatePartial(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	status := models.LessonStatusCancelled
	reason := "sick"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET status = $1, piece_id = NULL, cancel_reason = $2, updated_at = $3 WHERE id = $4 AND teacher_id = $5")).
		WithArgs("CANCELLED", "sick", sqlmock.AnyArg(), "lesson-1", "teacher-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "teacher-1", "lesson-1", models.UpdateLessonParams{
		Status:       &status,
		ClearPiece:   true,
		CancelReason: &reason,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryUpdateNoMatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	duration := 45
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET duration_min = $1, updated_at = $2 WHERE id = $3 AND teacher_id = $4")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "teacher-2", "lesson-1", models.UpdateLessonParams{DurationMin: &duration})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListRated(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)
	at := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.teacher_id = $1 AND l.status = ANY($2)")).
		WithArgs("teacher-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"lesson_id", "student_id", "student_name", "status", "scheduled_at", "rate"}).
			AddRow("lesson-1", "student-1", "An", "COMPLETE", at, int64(500000)))

	lessons, err := repo.ListRated(context.Background(), "teacher-1", []models.LessonStatus{models.LessonStatusComplete, models.LessonStatusCancelled}, nil, nil)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, int64(500000), lessons[0].Rate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
