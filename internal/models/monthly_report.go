package models

import "time"

// MonthlyReport holds the narrative fields of a student's report, unique per (student, month, year).
type MonthlyReport struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Month         int       `db:"month" json:"month"`
	Year          int       `db:"year" json:"year"`
	Summary       *string   `db:"summary" json:"summary,omitempty"`
	Comments      *string   `db:"comments" json:"comments,omitempty"`
	NextMonthPlan *string   `db:"next_month_plan" json:"next_month_plan,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// WeekBucket groups a month's lessons by Monday-anchored week.
type WeekBucket struct {
	Week     int            `json:"week"`
	StartDay int            `json:"start_day"`
	EndDay   int            `json:"end_day"`
	Lessons  []LessonDetail `json:"lessons"`
}

// TuitionSummary is the billing line of a monthly report.
type TuitionSummary struct {
	TotalSessions int    `json:"total_sessions"`
	TotalTuition  int64  `json:"total_tuition"`
	Rate          int64  `json:"rate"`
	RateSource    string `json:"rate_source"`
	Currency      string `json:"currency"`
}

// StudentReport is the full monthly report for one student.
type StudentReport struct {
	Month   int            `json:"month"`
	Year    int            `json:"year"`
	Report  *MonthlyReport `json:"report"`
	Student Student        `json:"student"`
	Lessons []LessonDetail `json:"lessons"`
	Weeks   []WeekBucket   `json:"weeks"`
	Summary TuitionSummary `json:"summary"`
}

// UpsertReportParams carries the narrative fields to merge; nil keeps the stored value.
type UpsertReportParams struct {
	StudentID     string
	Month         int
	Year          int
	Summary       *string
	Comments      *string
	NextMonthPlan *string
}
