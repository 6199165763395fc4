package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/studio-lessons-api/pkg/errors"
	"github.com/noah-isme/studio-lessons-api/pkg/response"
)

// ContextTeacherKey stores the caller's teacher id; "" when the user has no profile yet.
const ContextTeacherKey = "currentTeacherID"

type teacherResolver interface {
	FindIDByUserID(ctx context.Context, userID string) (string, error)
}

// CurrentTeacher resolves the authenticated user's teacher profile. It never
// creates one; handlers decide how to treat a missing profile.
func CurrentTeacher(resolver teacherResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		teacherID, err := resolver.FindIDByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(ContextTeacherKey, teacherID)
		c.Next()
	}
}

// TeacherID returns the id stored by CurrentTeacher.
func TeacherID(c *gin.Context) string {
	return c.GetString(ContextTeacherKey)
}
