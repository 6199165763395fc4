package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studio-lessons-api/internal/middleware"
	"github.com/noah-isme/studio-lessons-api/internal/models"
	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

// requireClaims writes 401 and returns nil when the request is unauthenticated.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

func teacherFromContext(c *gin.Context) string {
	return middleware.TeacherID(c)
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

func invalidQuery(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
}
