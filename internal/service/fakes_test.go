package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

// memDB is a tiny in-memory stand-in for the SQL schema used by service tests.
type memDB struct {
	teachers   map[string]*models.Teacher
	students   map[string]*models.Student
	pieces     map[string]*models.Piece
	lessons    map[string]*models.Lesson
	attendance map[string]*models.Attendance
	reports    map[string]*models.MonthlyReport
}

func newMemDB() *memDB {
	return &memDB{
		teachers:   map[string]*models.Teacher{},
		students:   map[string]*models.Student{},
		pieces:     map[string]*models.Piece{},
		lessons:    map[string]*models.Lesson{},
		attendance: map[string]*models.Attendance{},
		reports:    map[string]*models.MonthlyReport{},
	}
}

func (db *memDB) addTeacher(userID string, rate int64) *models.Teacher {
	t := &models.Teacher{ID: uuid.NewString(), UserID: userID, DisplayName: userID, PerSessionRate: rate, Currency: models.DefaultCurrency}
	db.teachers[t.ID] = t
	return t
}

func (db *memDB) addStudent(teacherID, name string, rate int64) *models.Student {
	s := &models.Student{ID: uuid.NewString(), TeacherID: teacherID, Name: name, LessonRate: rate}
	db.students[s.ID] = s
	return s
}

func (db *memDB) addPiece(teacherID, title string) *models.Piece {
	p := &models.Piece{ID: uuid.NewString(), TeacherID: teacherID, Title: title, Difficulty: 1}
	db.pieces[p.ID] = p
	return p
}

func (db *memDB) addLesson(studentID string, at time.Time, status models.LessonStatus) *models.Lesson {
	st := db.students[studentID]
	l := &models.Lesson{ID: uuid.NewString(), TeacherID: st.TeacherID, StudentID: studentID, ScheduledAt: at, DurationMin: 60, Status: status}
	db.lessons[l.ID] = l
	return l
}

func (db *memDB) detail(l *models.Lesson) models.LessonDetail {
	d := models.LessonDetail{Lesson: *l}
	if st, ok := db.students[l.StudentID]; ok {
		d.Student = models.StudentSummary{ID: st.ID, Name: st.Name, AvatarURL: st.AvatarURL, LessonRate: st.LessonRate}
	}
	if l.PieceID != nil {
		if p, ok := db.pieces[*l.PieceID]; ok {
			d.Piece = &models.PieceSummary{ID: p.ID, Title: p.Title}
		}
	}
	if att, ok := db.attendance[l.ID]; ok {
		copied := *att
		d.Attendance = &copied
	}
	return d
}

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeOwnershipRepo struct{ db *memDB }

func (r fakeOwnershipRepo) StudentOwnedBy(_ context.Context, teacherID, id string) (bool, error) {
	s, ok := r.db.students[id]
	return ok && s.TeacherID == teacherID, nil
}

func (r fakeOwnershipRepo) PieceOwnedBy(_ context.Context, teacherID, id string) (bool, error) {
	p, ok := r.db.pieces[id]
	return ok && p.TeacherID == teacherID, nil
}

func (r fakeOwnershipRepo) LessonOwnedBy(_ context.Context, teacherID, id string) (bool, error) {
	l, ok := r.db.lessons[id]
	return ok && l.TeacherID == teacherID, nil
}

type fakeTeacherRepo struct{ db *memDB }

func (r fakeTeacherRepo) FindByUserID(_ context.Context, userID string) (*models.Teacher, error) {
	for _, t := range r.db.teachers {
		if t.UserID == userID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r fakeTeacherRepo) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	t, ok := r.db.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r fakeTeacherRepo) Ensure(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	if existing, err := r.FindByUserID(ctx, teacher.UserID); err == nil {
		return existing, nil
	}
	stored := *teacher
	stored.ID = uuid.NewString()
	r.db.teachers[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r fakeTeacherRepo) Update(_ context.Context, teacher *models.Teacher) error {
	copied := *teacher
	r.db.teachers[teacher.ID] = &copied
	return nil
}

type fakeStudentRepo struct{ db *memDB }

func (r fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range r.db.students {
		if s.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (r fakeStudentRepo) FindByID(_ context.Context, teacherID, id string) (*models.Student, error) {
	s, ok := r.db.students[id]
	if !ok || s.TeacherID != teacherID {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (r fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = uuid.NewString()
	copied := *student
	r.db.students[student.ID] = &copied
	return nil
}

func (r fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	copied := *student
	r.db.students[student.ID] = &copied
	return nil
}

func (r fakeStudentRepo) Delete(_ context.Context, teacherID, id string) error {
	s, ok := r.db.students[id]
	if !ok || s.TeacherID != teacherID {
		return sql.ErrNoRows
	}
	delete(r.db.students, id)
	for lid, l := range r.db.lessons {
		if l.StudentID == id {
			delete(r.db.lessons, lid)
		}
	}
	return nil
}

type fakePieceRepo struct{ db *memDB }

func (r fakePieceRepo) List(_ context.Context, filter models.PieceFilter) ([]models.Piece, error) {
	var out []models.Piece
	for _, p := range r.db.pieces {
		if p.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Difficulty != nil && p.Difficulty != *filter.Difficulty {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r fakePieceRepo) FindByID(_ context.Context, teacherID, id string) (*models.Piece, error) {
	p, ok := r.db.pieces[id]
	if !ok || p.TeacherID != teacherID {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (r fakePieceRepo) Create(_ context.Context, piece *models.Piece) error {
	piece.ID = uuid.NewString()
	copied := *piece
	r.db.pieces[piece.ID] = &copied
	return nil
}

func (r fakePieceRepo) Update(_ context.Context, piece *models.Piece) error {
	copied := *piece
	r.db.pieces[piece.ID] = &copied
	return nil
}

func (r fakePieceRepo) Delete(_ context.Context, teacherID, id string) error {
	p, ok := r.db.pieces[id]
	if !ok || p.TeacherID != teacherID {
		return sql.ErrNoRows
	}
	delete(r.db.pieces, id)
	for _, l := range r.db.lessons {
		if l.PieceID != nil && *l.PieceID == id {
			l.PieceID = nil
		}
	}
	return nil
}

type fakeLessonRepo struct {
	db *memDB
	// failAt makes the n-th inserted row (1-based) fail.
	failAt int
}

func (r *fakeLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.BulkCreate(ctx, []models.Lesson{*lesson}, func(saved models.Lesson) { *lesson = saved })
}

func (r *fakeLessonRepo) BulkCreate(_ context.Context, lessons []models.Lesson, onSaved func(models.Lesson)) error {
	staged := make([]models.Lesson, 0, len(lessons))
	for i, l := range lessons {
		if r.failAt > 0 && i+1 == r.failAt {
			return fmt.Errorf("insert lesson: boom")
		}
		l.ID = uuid.NewString()
		staged = append(staged, l)
	}
	for _, l := range staged {
		copied := l
		r.db.lessons[l.ID] = &copied
		if onSaved != nil {
			onSaved(l)
		}
	}
	return nil
}

func (r *fakeLessonRepo) FindDetail(_ context.Context, teacherID, id string) (*models.LessonDetail, error) {
	l, ok := r.db.lessons[id]
	if !ok || l.TeacherID != teacherID {
		return nil, sql.ErrNoRows
	}
	d := r.db.detail(l)
	return &d, nil
}

func (r *fakeLessonRepo) List(_ context.Context, filter models.LessonFilter) ([]models.LessonDetail, error) {
	var out []models.LessonDetail
	for _, l := range r.db.lessons {
		if l.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && l.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.From != nil && l.ScheduledAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !l.ScheduledAt.Before(*filter.To) {
			continue
		}
		out = append(out, r.db.detail(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *fakeLessonRepo) Update(_ context.Context, teacherID, id string, p models.UpdateLessonParams) error {
	l, ok := r.db.lessons[id]
	if !ok || l.TeacherID != teacherID {
		return sql.ErrNoRows
	}
	if p.ScheduledAt != nil {
		l.ScheduledAt = *p.ScheduledAt
	}
	if p.DurationMin != nil {
		l.DurationMin = *p.DurationMin
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.ClearPiece {
		l.PieceID = nil
	} else if p.PieceID != nil {
		piece := *p.PieceID
		l.PieceID = &piece
	}
	if p.CancelReason != nil {
		reason := *p.CancelReason
		l.CancelReason = &reason
	}
	if p.ActualMin != nil {
		actual := *p.ActualMin
		l.ActualMin = &actual
	}
	if p.Note != nil {
		note := *p.Note
		l.Note = &note
	}
	return nil
}

func (r *fakeLessonRepo) Delete(_ context.Context, teacherID, id string) error {
	l, ok := r.db.lessons[id]
	if !ok || l.TeacherID != teacherID {
		return sql.ErrNoRows
	}
	delete(r.db.lessons, id)
	delete(r.db.attendance, id)
	return nil
}

func (r *fakeLessonRepo) ListRated(_ context.Context, teacherID string, statuses []models.LessonStatus, from, to *time.Time) ([]models.RatedLesson, error) {
	want := map[models.LessonStatus]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.RatedLesson
	for _, l := range r.db.lessons {
		if l.TeacherID != teacherID || !want[l.Status] {
			continue
		}
		if from != nil && l.ScheduledAt.Before(*from) {
			continue
		}
		if to != nil && !l.ScheduledAt.Before(*to) {
			continue
		}
		st := r.db.students[l.StudentID]
		out = append(out, models.RatedLesson{
			LessonID:    l.ID,
			StudentID:   l.StudentID,
			StudentName: st.Name,
			Status:      l.Status,
			ScheduledAt: l.ScheduledAt,
			Rate:        st.LessonRate,
		})
	}
	return out, nil
}

type fakeAttendanceRepo struct{ db *memDB }

func (r fakeAttendanceRepo) Upsert(_ context.Context, att *models.Attendance) error {
	if existing, ok := r.db.attendance[att.LessonID]; ok {
		att.ID = existing.ID
		att.CreatedAt = existing.CreatedAt
	} else if att.ID == "" {
		att.ID = uuid.NewString()
	}
	copied := *att
	r.db.attendance[att.LessonID] = &copied
	return nil
}

type fakeReportRepo struct{ db *memDB }

func reportKey(studentID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", studentID, month, year)
}

func (r fakeReportRepo) Find(_ context.Context, studentID string, month, year int) (*models.MonthlyReport, error) {
	rep, ok := r.db.reports[reportKey(studentID, month, year)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *rep
	return &copied, nil
}

func (r fakeReportRepo) Upsert(_ context.Context, p models.UpsertReportParams) (*models.MonthlyReport, error) {
	key := reportKey(p.StudentID, p.Month, p.Year)
	rep, ok := r.db.reports[key]
	if !ok {
		rep = &models.MonthlyReport{ID: uuid.NewString(), StudentID: p.StudentID, Month: p.Month, Year: p.Year}
		r.db.reports[key] = rep
	}
	if p.Summary != nil {
		rep.Summary = p.Summary
	}
	if p.Comments != nil {
		rep.Comments = p.Comments
	}
	if p.NextMonthPlan != nil {
		rep.NextMonthPlan = p.NextMonthPlan
	}
	copied := *rep
	return &copied, nil
}

type recordingInvalidator struct{ teachers []string }

func (r *recordingInvalidator) InvalidateDashboard(_ context.Context, teacherID string) {
	r.teachers = append(r.teachers, teacherID)
}

// studio wires every domain service against one memDB.
type studio struct {
	db         *memDB
	tx         *fakeTx
	lessonRepo *fakeLessonRepo
	invalid    *recordingInvalidator
	guard      *OwnershipGuard
	lessons    *LessonService
	attendance *AttendanceService
	earnings   *EarningsService
	reports    *ReportService
	students   *StudentService
	pieces     *PieceService
	teachers   *TeacherService
}

func newStudio(loc *time.Location, rateSource string) *studio {
	db := newMemDB()
	st := &studio{db: db, tx: &fakeTx{}, lessonRepo: &fakeLessonRepo{db: db}, invalid: &recordingInvalidator{}}
	st.guard = NewOwnershipGuard(fakeOwnershipRepo{db: db})
	st.teachers = NewTeacherService(fakeTeacherRepo{db: db}, nil, nil)
	st.lessons = NewLessonService(st.lessonRepo, st.guard, st.tx, st.invalid, nil, nil, nil, LessonConfig{Location: loc})
	st.attendance = NewAttendanceService(fakeAttendanceRepo{db: db}, st.lessonRepo, st.guard, st.tx, st.invalid, nil, nil, nil)
	st.earnings = NewEarningsService(st.lessonRepo, nil, nil, nil, EarningsConfig{Location: loc})
	st.reports = NewReportService(fakeStudentRepo{db: db}, fakeTeacherRepo{db: db}, st.lessonRepo, fakeReportRepo{db: db}, st.guard, st.tx, nil, nil, ReportConfig{Location: loc, RateSource: rateSource})
	st.students = NewStudentService(fakeStudentRepo{db: db}, st.teachers, st.guard, st.tx, st.invalid, nil, nil)
	st.pieces = NewPieceService(fakePieceRepo{db: db}, st.guard, st.tx, nil, nil)
	return st
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
