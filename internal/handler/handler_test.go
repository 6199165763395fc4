package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/middleware"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
	"github.com/noah-isme/studio-lessons-api/pkg/middleware/requestid"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// asTeacher stands in for JWT and CurrentTeacher.
func asTeacher(userID, teacherID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, FullName: "Ms. Lan"})
		c.Set(middleware.ContextTeacherKey, teacherID)
		c.Next()
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEarnings struct {
	totals    *models.DashboardTotals
	hit       bool
	teacherID string
}

func (f *fakeEarnings) Dashboard(_ context.Context, teacherID string) (*models.DashboardTotals, bool, error) {
	f.teacherID = teacherID
	return f.totals, f.hit, nil
}

func (f *fakeEarnings) ByStudent(context.Context, string, dto.MonthQuery) ([]models.StudentEarnings, error) {
	return []models.StudentEarnings{}, nil
}

func (f *fakeEarnings) Today(context.Context, string, dto.TodayQuery) ([]models.LessonEarning, error) {
	return []models.LessonEarning{}, nil
}

func TestEarningsDashboardCarriesCacheMeta(t *testing.T) {
	svc := &fakeEarnings{totals: &models.DashboardTotals{TotalEarnings: 1000000, CurrentMonthLoss: 500000}, hit: true}
	r := gin.New()
	r.Use(requestid.Middleware(), middleware.WithResponseMeta(), asTeacher("u1", "t1"))
	r.GET("/earnings/dashboard", NewEarningsHandler(svc).Dashboard)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/earnings/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.NotEmpty(t, env.Meta["request_id"])
	assert.Contains(t, env.Meta, "processing_time_ms")
	assert.JSONEq(t, `{"total_earnings":1000000,"current_month_earnings":0,"current_month_loss":500000}`, string(env.Data))
	assert.Equal(t, "t1", svc.teacherID)
}

func TestEarningsByStudentRejectsNonNumericMonth(t *testing.T) {
	r := gin.New()
	r.GET("/earnings/students", NewEarningsHandler(&fakeEarnings{}).ByStudent)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/earnings/students?month=march", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Error.Code)
}

type fakeLessons struct {
	lessonService
	recurring dto.CreateRecurringLessonsRequest
	count     int
	err       error
}

func (f *fakeLessons) CreateRecurring(_ context.Context, _ string, req dto.CreateRecurringLessonsRequest) (int, error) {
	f.recurring = req
	return f.count, f.err
}

type fakeAttendance struct {
	lessonID string
	err      error
}

func (f *fakeAttendance) Mark(_ context.Context, _ string, lessonID string, req dto.MarkAttendanceRequest) (*models.Attendance, error) {
	f.lessonID = lessonID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Attendance{LessonID: lessonID, Status: models.AttendanceStatus(req.Status)}, nil
}

func TestCreateRecurringReturnsCount(t *testing.T) {
	svc := &fakeLessons{count: 5}
	h := NewLessonHandler(svc, &fakeAttendance{})
	r := gin.New()
	r.Use(asTeacher("u1", "t1"))
	r.POST("/lessons/recurring", h.CreateRecurring)

	body := `{"studentId":"2b1f7d9e-4c1a-4f7e-9a57-0c6c1c1d2e3f","startDate":"2025-03-01","dayOfWeek":1,"time":"15:30","durationMinutes":45,"recurrenceMonths":1}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lessons/recurring", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"count":5}`, string(decode(t, rec).Data))
	assert.Equal(t, "15:30", svc.recurring.TimeOfDay)
	assert.Equal(t, 1, svc.recurring.DayOfWeek)
}

func TestCreateRecurringMalformedBody(t *testing.T) {
	h := NewLessonHandler(&fakeLessons{}, &fakeAttendance{})
	r := gin.New()
	r.POST("/lessons/recurring", h.CreateRecurring)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lessons/recurring", bytes.NewBufferString(`{"dayOfWeek":"monday"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAttendanceNotOwned(t *testing.T) {
	att := &fakeAttendance{err: appErrors.Clone(appErrors.ErrNotFound, "lesson not found")}
	r := gin.New()
	r.Use(asTeacher("u1", "t1"))
	r.PUT("/lessons/:id/attendance", NewLessonHandler(&fakeLessons{}, att).MarkAttendance)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/lessons/l-9/attendance", bytes.NewBufferString(`{"status":"PRESENT","actualMin":30}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "lesson not found", decode(t, rec).Error.Message)
	assert.Equal(t, "l-9", att.lessonID)
}

type fakeStudents struct {
	studentService
	userID, displayName string
}

func (f *fakeStudents) Create(_ context.Context, userID, displayName string, req dto.CreateStudentRequest) (*models.Student, error) {
	f.userID, f.displayName = userID, displayName
	return &models.Student{ID: "s1", Name: req.Name, LessonRate: req.LessonRate}, nil
}

func TestCreateStudentPassesCaller(t *testing.T) {
	svc := &fakeStudents{}
	r := gin.New()
	r.Use(asTeacher("u1", ""))
	r.POST("/students", NewStudentHandler(svc).Create)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(`{"name":"Minh","lessonRate":500000}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", svc.userID)
	assert.Equal(t, "Ms. Lan", svc.displayName)
}

type fakeExports struct {
	exportService
	file *models.ExportFile
	path string
	err  error
}

func (f *fakeExports) Resolve(string) (*models.ExportFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.file, nil
}

func (f *fakeExports) Open(*models.ExportFile) (*os.File, error) {
	return os.Open(f.path)
}

func TestDownloadStreamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("Week,Date\n1,2025-03-03\n"), 0o600))
	exports := &fakeExports{
		file: &models.ExportFile{Key: "t1/report.csv", Filename: "report_minh_2025-03.csv", ContentType: "text/csv"},
		path: path,
	}
	r := gin.New()
	r.GET("/export/:token", NewReportHandler(nil, exports).Download)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/tok", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report_minh_2025-03.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Week,Date\n1,2025-03-03\n", rec.Body.String())
}

func TestDownloadExpired(t *testing.T) {
	r := gin.New()
	r.GET("/export/:token", NewReportHandler(nil, &fakeExports{err: appErrors.ErrExportExpired}).Download)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export/tok", nil))

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := NewHealthHandler(nil, map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
		"skipped":  nil,
	})
	r := gin.New()
	RegisterOps(r, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"postgres":"ok","redis":"connection refused"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegisterRoutesProtectsAPI(t *testing.T) {
	denied := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	}
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), Handlers{
		Auth:     NewAuthHandler(nil),
		Users:    NewUserHandler(nil),
		Teacher:  NewTeacherHandler(nil),
		Students: NewStudentHandler(nil),
		Pieces:   NewPieceHandler(nil),
		Lessons:  NewLessonHandler(nil, nil),
		Earnings: NewEarningsHandler(&fakeEarnings{}),
		Reports:  NewReportHandler(nil, &fakeExports{err: appErrors.ErrExportExpired}),
	}, denied, denied)

	for _, target := range []string{"/api/v1/me", "/api/v1/lessons/month", "/api/v1/earnings/dashboard", "/api/v1/reports/students/s1"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/tok", nil))
	assert.Equal(t, http.StatusGone, rec.Code)
}
