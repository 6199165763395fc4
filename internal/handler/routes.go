package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Teacher  *TeacherHandler
	Students *StudentHandler
	Pieces   *PieceHandler
	Lessons  *LessonHandler
	Earnings *EarningsHandler
	Reports  *ReportHandler
}

// RegisterRoutes mounts the API. authenticate must populate JWT claims and
// resolveTeacher the caller's teacher id; both run on every protected route.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authenticate, resolveTeacher gin.HandlerFunc) {
	api.POST("/auth/login", h.Auth.Login)
	// Signed token is the credential.
	api.GET("/export/:token", h.Reports.Download)

	protected := api.Group("")
	protected.Use(authenticate, resolveTeacher)

	protected.GET("/me", h.Users.Me)
	protected.PUT("/me", h.Users.UpdateMe)

	protected.POST("/teacher/profile", h.Teacher.Ensure)
	protected.GET("/teacher/profile", h.Teacher.Get)
	protected.PUT("/teacher/profile", h.Teacher.Update)

	students := protected.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	pieces := protected.Group("/pieces")
	pieces.GET("", h.Pieces.List)
	pieces.POST("", h.Pieces.Create)
	pieces.GET("/:id", h.Pieces.Get)
	pieces.PUT("/:id", h.Pieces.Update)
	pieces.DELETE("/:id", h.Pieces.Delete)

	lessons := protected.Group("/lessons")
	lessons.GET("", h.Lessons.List)
	lessons.POST("", h.Lessons.Create)
	lessons.POST("/recurring", h.Lessons.CreateRecurring)
	lessons.GET("/range", h.Lessons.Range)
	lessons.GET("/month", h.Lessons.Month)
	lessons.GET("/:id", h.Lessons.Get)
	lessons.PUT("/:id", h.Lessons.Update)
	lessons.DELETE("/:id", h.Lessons.Delete)
	lessons.PUT("/:id/attendance", h.Lessons.MarkAttendance)

	earnings := protected.Group("/earnings")
	earnings.GET("/dashboard", h.Earnings.Dashboard)
	earnings.GET("/today", h.Earnings.Today)
	earnings.GET("/students", h.Earnings.ByStudent)

	reports := protected.Group("/reports/students")
	reports.GET("/:id", h.Reports.StudentReport)
	reports.PUT("/:id", h.Reports.Upsert)
	reports.POST("/:id/export", h.Reports.Export)
}

// RegisterOps mounts liveness, readiness and metrics at the root.
func RegisterOps(r gin.IRouter, h *HealthHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
