package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
)

func TestLessonCreateDefaultsToPending(t *testing.T) {
	st := newStudio(time.UTC, "")
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 500000)
	piece := st.db.addPiece(teacher.ID, "Für Elise")

	detail, err := st.lessons.Create(context.Background(), teacher.ID, dto.CreateLessonRequest{
		StudentID:   student.ID,
		Date:        time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		DurationMin: 45,
		PieceID:     &piece.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.LessonStatusPending, detail.Status)
	assert.Equal(t, teacher.ID, detail.TeacherID)
	assert.Equal(t, "Linh", detail.Student.Name)
	require.NotNil(t, detail.Piece)
	assert.Equal(t, "Für Elise", detail.Piece.Title)
	assert.Equal(t, []string{teacher.ID}, st.invalid.teachers)
	assert.Equal(t, 1, st.tx.calls)
}

func TestLessonCreateConfiguredDefaultStatus(t *testing.T) {
	st := newStudio(time.UTC, "")
	svc := NewLessonService(st.lessonRepo, st.guard, st.tx, nil, nil, nil, nil, LessonConfig{DefaultStatus: models.LessonStatusComplete})
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 500000)

	detail, err := svc.Create(context.Background(), teacher.ID, dto.CreateLessonRequest{StudentID: student.ID, Date: time.Now(), DurationMin: 60})
	require.NoError(t, err)
	assert.Equal(t, models.LessonStatusComplete, detail.Status)
}

func TestLessonCreateRejectsForeignStudentAndPiece(t *testing.T) {
	st := newStudio(time.UTC, "")
	mine := st.db.addTeacher("u1", 0)
	other := st.db.addTeacher("u2", 0)
	myStudent := st.db.addStudent(mine.ID, "Linh", 1)
	theirStudent := st.db.addStudent(other.ID, "Mai", 1)
	theirPiece := st.db.addPiece(other.ID, "Canon")

	_, err := st.lessons.Create(context.Background(), mine.ID, dto.CreateLessonRequest{StudentID: theirStudent.ID, Date: time.Now(), DurationMin: 60})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = st.lessons.Create(context.Background(), mine.ID, dto.CreateLessonRequest{StudentID: myStudent.ID, Date: time.Now(), DurationMin: 60, PieceID: &theirPiece.ID})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = st.lessons.Create(context.Background(), "", dto.CreateLessonRequest{StudentID: myStudent.ID, Date: time.Now(), DurationMin: 60})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	assert.Empty(t, st.db.lessons)
}

func TestLessonCreateValidatesDuration(t *testing.T) {
	st := newStudio(time.UTC, "")
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 1)

	for _, minutes := range []int{0, 14, 481} {
		_, err := st.lessons.Create(context.Background(), teacher.ID, dto.CreateLessonRequest{StudentID: student.ID, Date: time.Now(), DurationMin: minutes})
		assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code), "duration %d", minutes)
	}
}

func TestLessonCreateRecurringMondays(t *testing.T) {
	st := newStudio(time.UTC, "")
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 1)

	count, err := st.lessons.CreateRecurring(context.Background(), teacher.ID, dto.CreateRecurringLessonsRequest{
		StudentID:        student.ID,
		StartDate:        "2025-01-06",
		DayOfWeek:        1,
		TimeOfDay:        "17:30",
		DurationMin:      60,
		RecurrenceMonths: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	require.Len(t, st.db.lessons, 5)

	days := map[string]bool{}
	for _, l := range st.db.lessons {
		assert.Equal(t, teacher.ID, l.TeacherID)
		assert.Equal(t, models.LessonStatusPending, l.Status)
		assert.Equal(t, 17, l.ScheduledAt.Hour())
		days[l.ScheduledAt.Format(dateLayout)] = true
	}
	for _, d := range []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27", "2025-02-03"} {
		assert.True(t, days[d], d)
	}
}

func TestLessonCreateRecurringIsAtomic(t *testing.T) {
	st := newStudio(time.UTC, "")
	mine := st.db.addTeacher("u1", 0)
	other := st.db.addTeacher("u2", 0)
	theirs := st.db.addStudent(other.ID, "Mai", 1)
	student := st.db.addStudent(mine.ID, "Linh", 1)

	req := dto.CreateRecurringLessonsRequest{StudentID: theirs.ID, StartDate: "2025-01-06", DayOfWeek: 1, TimeOfDay: "09:00", DurationMin: 60, RecurrenceMonths: 2}
	_, err := st.lessons.CreateRecurring(context.Background(), mine.ID, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
	assert.Empty(t, st.db.lessons)

	st.lessonRepo.failAt = 3
	req.StudentID = student.ID
	_, err = st.lessons.CreateRecurring(context.Background(), mine.ID, req)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrInternal.Code))
	assert.Empty(t, st.db.lessons)
}

func TestLessonCreateRecurringValidation(t *testing.T) {
	st := newStudio(time.UTC, "")
	base := dto.CreateRecurringLessonsRequest{StudentID: "8a4f7c1e-7f65-4e28-9d0b-1d1f6c1f0a11", StartDate: "2025-01-06", DayOfWeek: 1, TimeOfDay: "09:00", DurationMin: 60, RecurrenceMonths: 1}

	bad := []func(r *dto.CreateRecurringLessonsRequest){
		func(r *dto.CreateRecurringLessonsRequest) { r.RecurrenceMonths = 3 },
		func(r *dto.CreateRecurringLessonsRequest) { r.DayOfWeek = 7 },
		func(r *dto.CreateRecurringLessonsRequest) { r.TimeOfDay = "25:00" },
		func(r *dto.CreateRecurringLessonsRequest) { r.StartDate = "06/01/2025" },
	}
	for i, mutate := range bad {
		req := base
		mutate(&req)
		_, err := st.lessons.CreateRecurring(context.Background(), "teacher", req)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code), "case %d", i)
	}
}

func TestLessonUpdatePartial(t *testing.T) {
	st := newStudio(time.UTC, "")
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 1)
	piece := st.db.addPiece(teacher.ID, "Canon")
	lesson := st.db.addLesson(student.ID, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), models.LessonStatusPending)
	lesson.PieceID = &piece.ID

	status := "CANCELLED"
	detail, err := st.lessons.Update(context.Background(), teacher.ID, lesson.ID, dto.UpdateLessonRequest{
		Status:       &status,
		CancelReason: strPtr("sick"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LessonStatusCancelled, detail.Status)
	require.NotNil(t, detail.CancelReason)
	assert.Equal(t, "sick", *detail.CancelReason)
	assert.Equal(t, 60, detail.DurationMin)
	require.NotNil(t, detail.Piece)

	detail, err = st.lessons.Update(context.Background(), teacher.ID, lesson.ID, dto.UpdateLessonRequest{PieceID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, detail.Piece)
	assert.Nil(t, detail.PieceID)
	assert.Equal(t, models.LessonStatusCancelled, detail.Status)

	complete := "COMPLETE"
	detail, err = st.lessons.Update(context.Background(), teacher.ID, lesson.ID, dto.UpdateLessonRequest{Status: &complete, DurationMin: intPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, models.LessonStatusComplete, detail.Status)
	assert.Equal(t, 30, detail.DurationMin)
}

func TestLessonUpdateRejectsBadPieceID(t *testing.T) {
	st := newStudio(time.UTC, "")
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 1)
	lesson := st.db.addLesson(student.ID, time.Now(), models.LessonStatusPending)

	_, err := st.lessons.Update(context.Background(), teacher.ID, lesson.ID, dto.UpdateLessonRequest{PieceID: strPtr("not-a-uuid")})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestLessonOwnershipIsolation(t *testing.T) {
	st := newStudio(time.UTC, "")
	owner := st.db.addTeacher("u1", 0)
	intruder := st.db.addTeacher("u2", 0)
	student := st.db.addStudent(owner.ID, "Linh", 1)
	lesson := st.db.addLesson(student.ID, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), models.LessonStatusPending)
	before := *lesson

	status := "COMPLETE"
	_, err := st.lessons.Update(context.Background(), intruder.ID, lesson.ID, dto.UpdateLessonRequest{Status: &status})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = st.lessons.Delete(context.Background(), intruder.ID, lesson.ID)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	_, err = st.attendance.Mark(context.Background(), intruder.ID, lesson.ID, dto.MarkAttendanceRequest{Status: "PRESENT", ActualMin: 60})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))

	require.Contains(t, st.db.lessons, lesson.ID)
	assert.Equal(t, before, *st.db.lessons[lesson.ID])
	assert.Empty(t, st.db.attendance)
}

func TestLessonDeleteReturnsDeleted(t *testing.T) {
	st := newStudio(time.UTC, "")
	teacher := st.db.addTeacher("u1", 0)
	student := st.db.addStudent(teacher.ID, "Linh", 1)
	lesson := st.db.addLesson(student.ID, time.Now(), models.LessonStatusPending)

	deleted, err := st.lessons.Delete(context.Background(), teacher.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, deleted.ID)
	assert.NotContains(t, st.db.lessons, lesson.ID)

	_, err = st.lessons.Delete(context.Background(), teacher.ID, lesson.ID)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestLessonReads(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	st := newStudio(loc, "")
	st.lessons.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, loc) }
	teacher := st.db.addTeacher("u1", 0)
	a := st.db.addStudent(teacher.ID, "An", 1)
	b := st.db.addStudent(teacher.ID, "Binh", 1)
	st.db.addLesson(a.ID, time.Date(2025, 3, 1, 0, 30, 0, 0, loc), models.LessonStatusComplete)
	st.db.addLesson(a.ID, time.Date(2025, 3, 31, 23, 0, 0, 0, loc), models.LessonStatusPending)
	st.db.addLesson(b.ID, time.Date(2025, 3, 10, 9, 0, 0, 0, loc), models.LessonStatusCancelled)
	st.db.addLesson(b.ID, time.Date(2025, 4, 1, 9, 0, 0, 0, loc), models.LessonStatusPending)

	month, err := st.lessons.ListForMonth(context.Background(), teacher.ID, dto.MonthQuery{})
	require.NoError(t, err)
	assert.Len(t, month, 3)

	april, err := st.lessons.ListForMonth(context.Background(), teacher.ID, dto.MonthQuery{Month: 4, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, april, 1)

	ranged, err := st.lessons.ListInRange(context.Background(), teacher.ID, dto.LessonRangeQuery{From: "2025-03-10", To: "2025-03-31"})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	_, err = st.lessons.ListInRange(context.Background(), teacher.ID, dto.LessonRangeQuery{From: "2025-03-31", To: "2025-03-10"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	filtered, err := st.lessons.List(context.Background(), teacher.ID, dto.LessonQuery{StudentID: a.ID, Status: "PENDING"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID, filtered[0].StudentID)

	none, err := st.lessons.List(context.Background(), "", dto.LessonQuery{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
