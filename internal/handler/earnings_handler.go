package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/middleware"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

type earningsService interface {
	Dashboard(ctx context.Context, teacherID string) (*models.DashboardTotals, bool, error)
	ByStudent(ctx context.Context, teacherID string, q dto.MonthQuery) ([]models.StudentEarnings, error)
	Today(ctx context.Context, teacherID string, q dto.TodayQuery) ([]models.LessonEarning, error)
}

// EarningsHandler exposes the earnings dashboard.
type EarningsHandler struct {
	earnings earningsService
}

// NewEarningsHandler constructs EarningsHandler.
func NewEarningsHandler(earnings earningsService) *EarningsHandler {
	return &EarningsHandler{earnings: earnings}
}

// Dashboard godoc
// @Summary Earnings totals
// @Description All-time earnings, current month earnings and current month loss.
// @Tags Earnings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /earnings/dashboard [get]
func (h *EarningsHandler) Dashboard(c *gin.Context) {
	totals, cacheHit, err := h.earnings.Dashboard(c.Request.Context(), teacherFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, totals, nil, middleware.ResponseMeta(c))
}

// Today godoc
// @Summary Lessons of a day with their earnings
// @Tags Earnings
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /earnings/today [get]
func (h *EarningsHandler) Today(c *gin.Context) {
	var q dto.TodayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	lessons, err := h.earnings.Today(c.Request.Context(), teacherFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lessons)
}

// ByStudent godoc
// @Summary Earnings per student for a month
// @Tags Earnings
// @Produce json
// @Param month query int false "Month 1-12, defaults to current"
// @Param year query int false "Year, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /earnings/students [get]
func (h *EarningsHandler) ByStudent(c *gin.Context) {
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	rows, err := h.earnings.ByStudent(c.Request.Context(), teacherFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}
