package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

type lessonService interface {
	Create(ctx context.Context, teacherID string, req dto.CreateLessonRequest) (*models.LessonDetail, error)
	CreateRecurring(ctx context.Context, teacherID string, req dto.CreateRecurringLessonsRequest) (int, error)
	Update(ctx context.Context, teacherID, id string, req dto.UpdateLessonRequest) (*models.LessonDetail, error)
	Delete(ctx context.Context, teacherID, id string) (*models.LessonDetail, error)
	Get(ctx context.Context, teacherID, id string) (*models.LessonDetail, error)
	List(ctx context.Context, teacherID string, q dto.LessonQuery) ([]models.LessonDetail, error)
	ListInRange(ctx context.Context, teacherID string, q dto.LessonRangeQuery) ([]models.LessonDetail, error)
	ListForMonth(ctx context.Context, teacherID string, q dto.MonthQuery) ([]models.LessonDetail, error)
}

type attendanceService interface {
	Mark(ctx context.Context, teacherID, lessonID string, req dto.MarkAttendanceRequest) (*models.Attendance, error)
}

// LessonHandler exposes lesson scheduling and attendance endpoints.
type LessonHandler struct {
	lessons    lessonService
	attendance attendanceService
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(lessons lessonService, attendance attendanceService) *LessonHandler {
	return &LessonHandler{lessons: lessons, attendance: attendance}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param studentId query string false "Student ID"
// @Param status query string false "PENDING, COMPLETE or CANCELLED"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	var q dto.LessonQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	lessons, err := h.lessons.List(c.Request.Context(), teacherFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lessons)
}

// Range godoc
// @Summary List lessons between two dates
// @Tags Lessons
// @Produce json
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /lessons/range [get]
func (h *LessonHandler) Range(c *gin.Context) {
	var q dto.LessonRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	lessons, err := h.lessons.ListInRange(c.Request.Context(), teacherFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lessons)
}

// Month godoc
// @Summary List lessons of a calendar month
// @Tags Lessons
// @Produce json
// @Param month query int false "Month 1-12, defaults to current"
// @Param year query int false "Year, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /lessons/month [get]
func (h *LessonHandler) Month(c *gin.Context) {
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	lessons, err := h.lessons.ListForMonth(c.Request.Context(), teacherFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lessons)
}

// Get godoc
// @Summary Get lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.lessons.Get(c.Request.Context(), teacherFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lesson)
}

// Create godoc
// @Summary Schedule a lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	lesson, err := h.lessons.Create(c.Request.Context(), teacherFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// CreateRecurring godoc
// @Summary Schedule a weekly series
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateRecurringLessonsRequest true "Series payload"
// @Success 201 {object} response.Envelope
// @Router /lessons/recurring [post]
func (h *LessonHandler) CreateRecurring(c *gin.Context) {
	var req dto.CreateRecurringLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	count, err := h.lessons.CreateRecurring(c.Request.Context(), teacherFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.RecurringLessonsResponse{Count: count})
}

// Update godoc
// @Summary Update lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Partial lesson"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	lesson, err := h.lessons.Update(c.Request.Context(), teacherFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lesson)
}

// Delete godoc
// @Summary Delete lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	lesson, err := h.lessons.Delete(c.Request.Context(), teacherFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lesson)
}

// MarkAttendance godoc
// @Summary Record attendance for a lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/attendance [put]
func (h *LessonHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	att, err := h.attendance.Mark(c.Request.Context(), teacherFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, att)
}
