package dto

import "time"

// CreateLessonRequest captures POST /lessons.
type CreateLessonRequest struct {
	StudentID   string    `json:"studentId" validate:"required,uuid"`
	Date        time.Time `json:"date" validate:"required"`
	DurationMin int       `json:"durationMinutes" validate:"min=15,max=480"`
	PieceID     *string   `json:"pieceId,omitempty" validate:"omitempty,uuid"`
}

// UpdateLessonRequest captures PUT /lessons/:id. Omitted fields are left unchanged;
// an empty pieceId detaches the piece.
type UpdateLessonRequest struct {
	Date         *time.Time `json:"date,omitempty"`
	DurationMin  *int       `json:"durationMinutes,omitempty" validate:"omitempty,min=15,max=480"`
	Status       *string    `json:"status,omitempty" validate:"omitempty,oneof=PENDING COMPLETE CANCELLED"`
	PieceID      *string    `json:"pieceId,omitempty"`
	CancelReason *string    `json:"cancelReason,omitempty" validate:"omitempty,max=500"`
	ActualMin    *int       `json:"actualMin,omitempty" validate:"omitempty,min=0,max=480"`
	Note         *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// CreateRecurringLessonsRequest captures POST /lessons/recurring.
type CreateRecurringLessonsRequest struct {
	StudentID        string  `json:"studentId" validate:"required,uuid"`
	PieceID          *string `json:"pieceId,omitempty" validate:"omitempty,uuid"`
	StartDate        string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	DayOfWeek        int     `json:"dayOfWeek" validate:"min=0,max=6"`
	TimeOfDay        string  `json:"time" validate:"required,datetime=15:04"`
	DurationMin      int     `json:"durationMinutes" validate:"min=15,max=480"`
	RecurrenceMonths int     `json:"recurrenceMonths" validate:"min=1,max=2"`
}

// RecurringLessonsResponse reports how many lessons were generated.
type RecurringLessonsResponse struct {
	Count int `json:"count"`
}

// MarkAttendanceRequest captures PUT /lessons/:id/attendance.
type MarkAttendanceRequest struct {
	Status    string  `json:"status" validate:"required,oneof=PRESENT ABSENT MAKEUP"`
	ActualMin int     `json:"actualMin" validate:"min=0,max=480"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=500"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// LessonQuery is the query string of GET /lessons.
type LessonQuery struct {
	StudentID string `form:"studentId" validate:"omitempty,uuid"`
	Status    string `form:"status" validate:"omitempty,oneof=PENDING COMPLETE CANCELLED"`
	From      string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// LessonRangeQuery is the query string of GET /lessons/range. Both bounds are inclusive dates.
type LessonRangeQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

// MonthQuery selects a calendar month; zero values mean the current month.
type MonthQuery struct {
	Month int `form:"month" validate:"omitempty,min=1,max=12"`
	Year  int `form:"year" validate:"omitempty,min=2000,max=2100"`
}
