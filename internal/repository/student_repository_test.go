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

var studentRowColumns = []string{"id", "teacher_id", "name", "avatar_url", "notes", "lesson_rate", "created_at", "updated_at"}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, name, avatar_url, notes, lesson_rate, created_at, updated_at FROM students WHERE teacher_id = $1 AND LOWER(name) LIKE $2 ORDER BY name ASC, id ASC LIMIT 20 OFFSET 0")).
		WithArgs("teacher-1", "%an%").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow("student-1", "teacher-1", "An", nil, nil, int64(500000), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE teacher_id = $1 AND LOWER(name) LIKE $2")).
		WithArgs("teacher-1", "%an%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{TeacherID: "teacher-1", Search: "An"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, int64(500000), students[0].LessonRate)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDScopedToTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1 AND teacher_id = $2")).
		WithArgs("student-1", "teacher-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "teacher-2", "student-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "An", nil, nil, int64(500000), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{TeacherID: "teacher-1", Name: "An", LessonRate: 500000}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1 AND teacher_id = $2")).
		WithArgs("student-1", "teacher-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "teacher-1", "student-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
