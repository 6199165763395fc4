package models

import "time"

// RatedLesson is the minimal lesson projection used for earnings math.
type RatedLesson struct {
	LessonID    string       `db:"lesson_id"`
	StudentID   string       `db:"student_id"`
	StudentName string       `db:"student_name"`
	Status      LessonStatus `db:"status"`
	ScheduledAt time.Time    `db:"scheduled_at"`
	Rate        int64        `db:"rate"`
}

// DashboardTotals summarises a teacher's earnings.
type DashboardTotals struct {
	TotalEarnings        int64 `json:"total_earnings"`
	CurrentMonthEarnings int64 `json:"current_month_earnings"`
	CurrentMonthLoss     int64 `json:"current_month_loss"`
}

// StudentEarnings is one row of the per-student earnings table.
type StudentEarnings struct {
	StudentID     string `json:"student_id"`
	Name          string `json:"name"`
	TotalEarnings int64  `json:"total_earnings"`
	LessonCount   int    `json:"lesson_count"`
}

// LessonEarning is a lesson annotated with what it earns.
type LessonEarning struct {
	LessonDetail
	Earnings int64 `json:"earnings"`
}
