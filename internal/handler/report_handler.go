package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

type reportService interface {
	StudentReport(ctx context.Context, teacherID, studentID string, q dto.ReportQuery) (*models.StudentReport, error)
	Upsert(ctx context.Context, teacherID, studentID string, req dto.UpsertReportRequest) (*models.MonthlyReport, error)
}

type exportService interface {
	Export(ctx context.Context, teacherID, studentID string, req dto.ExportReportRequest) (*models.ReportExport, error)
	Resolve(token string) (*models.ExportFile, error)
	Open(file *models.ExportFile) (*os.File, error)
}

// ReportHandler exposes monthly student reports and their printable exports.
type ReportHandler struct {
	reports reportService
	exports exportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService, exports exportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// StudentReport godoc
// @Summary Monthly student report
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Param month query int true "Month 1-12"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /reports/students/{id} [get]
func (h *ReportHandler) StudentReport(c *gin.Context) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	report, err := h.reports.StudentReport(c.Request.Context(), teacherFromContext(c), c.Param("id"), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Upsert godoc
// @Summary Create or update the narrative of a monthly report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.UpsertReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Router /reports/students/{id} [put]
func (h *ReportHandler) Upsert(c *gin.Context) {
	var req dto.UpsertReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	report, err := h.reports.Upsert(c.Request.Context(), teacherFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Export godoc
// @Summary Render a monthly report for download
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.ExportReportRequest true "Export payload"
// @Success 201 {object} response.Envelope
// @Router /reports/students/{id}/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	export, err := h.exports.Export(c.Request.Context(), teacherFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, export)
}

// Download godoc
// @Summary Download a rendered report via signed token
// @Tags Reports
// @Produce application/pdf,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param token path string true "Signed token"
// @Success 200
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, err := h.exports.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	f, err := h.exports.Open(file)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read export"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), file.ContentType, f, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Filename),
		"Cache-Control":       "no-store",
	})
}
