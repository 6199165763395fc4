package dto

// UpsertReportRequest captures PUT /reports/students/:id. Omitted narrative
// fields keep their stored values.
type UpsertReportRequest struct {
	Month         int     `json:"month" validate:"min=1,max=12"`
	Year          int     `json:"year" validate:"min=2000,max=2100"`
	Summary       *string `json:"summary,omitempty" validate:"omitempty,max=5000"`
	Comments      *string `json:"comments,omitempty" validate:"omitempty,max=5000"`
	NextMonthPlan *string `json:"nextMonthPlan,omitempty" validate:"omitempty,max=5000"`
}

// ReportQuery is the query string of GET /reports/students/:id.
type ReportQuery struct {
	Month int `form:"month" validate:"min=1,max=12"`
	Year  int `form:"year" validate:"min=2000,max=2100"`
}

// ExportReportRequest captures POST /reports/students/:id/export.
type ExportReportRequest struct {
	Month  int    `json:"month" validate:"min=1,max=12"`
	Year   int    `json:"year" validate:"min=2000,max=2100"`
	Format string `json:"format" validate:"omitempty,oneof=pdf csv xlsx"`
}
