package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-lessons-api/internal/dto"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

type teacherService interface {
	EnsureProfile(ctx context.Context, userID, displayName string) (*models.Teacher, error)
	Get(ctx context.Context, teacherID string) (*models.Teacher, error)
	Update(ctx context.Context, teacherID string, req dto.UpdateTeacherRequest) (*models.Teacher, error)
}

// TeacherHandler exposes the caller's teacher profile.
type TeacherHandler struct {
	teachers teacherService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers teacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// Ensure godoc
// @Summary Create the teacher profile if missing
// @Tags Teacher
// @Accept json
// @Produce json
// @Param payload body dto.EnsureTeacherRequest false "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /teacher/profile [post]
func (h *TeacherHandler) Ensure(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.EnsureTeacherRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err))
			return
		}
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = claims.FullName
	}
	teacher, err := h.teachers.EnsureProfile(c.Request.Context(), claims.UserID, name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// Get godoc
// @Summary Get the teacher profile
// @Tags Teacher
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/profile [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), teacherFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}

// Update godoc
// @Summary Update the teacher profile
// @Tags Teacher
// @Accept json
// @Produce json
// @Param payload body dto.UpdateTeacherRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /teacher/profile [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), teacherFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, teacher)
}
