package models

import (
	"strings"
	"time"
)

// LessonStatus is the canonical lifecycle state of a lesson. Any state may be
// corrected to any other through an explicit update.
type LessonStatus string

const (
	LessonStatusPending   LessonStatus = "PENDING"
	LessonStatusComplete  LessonStatus = "COMPLETE"
	LessonStatusCancelled LessonStatus = "CANCELLED"
)

const (
	MinLessonDuration = 15
	MaxLessonDuration = 480
)

// Valid reports whether s is a known status.
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonStatusPending, LessonStatusComplete, LessonStatusCancelled:
		return true
	}
	return false
}

// ParseLessonStatus accepts any casing.
func ParseLessonStatus(raw string) (LessonStatus, bool) {
	s := LessonStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Lesson is a scheduled session. TeacherID always mirrors the owning student's teacher.
type Lesson struct {
	ID           string       `db:"id" json:"id"`
	TeacherID    string       `db:"teacher_id" json:"teacher_id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	PieceID      *string      `db:"piece_id" json:"piece_id,omitempty"`
	ScheduledAt  time.Time    `db:"scheduled_at" json:"scheduled_at"`
	DurationMin  int          `db:"duration_min" json:"duration_min"`
	Status       LessonStatus `db:"status" json:"status"`
	ActualMin    *int         `db:"actual_min" json:"actual_min,omitempty"`
	CancelReason *string      `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Note         *string      `db:"note" json:"note,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// LessonDetail is a lesson with its student, piece and attendance record.
type LessonDetail struct {
	Lesson
	Student    StudentSummary `json:"student"`
	Piece      *PieceSummary  `json:"piece,omitempty"`
	Attendance *Attendance    `json:"attendance,omitempty"`
}

// LessonFilter narrows lesson listings. From is inclusive, To exclusive.
type LessonFilter struct {
	TeacherID string
	StudentID string
	Status    LessonStatus
	From      *time.Time
	To        *time.Time
}

// UpdateLessonParams carries a partial lesson update; nil fields are left unchanged.
// ClearPiece detaches the piece and takes precedence over PieceID.
type UpdateLessonParams struct {
	ScheduledAt  *time.Time
	DurationMin  *int
	Status       *LessonStatus
	PieceID      *string
	ClearPiece   bool
	CancelReason *string
	ActualMin    *int
	Note         *string
}

// Empty reports whether no field would change.
func (p UpdateLessonParams) Empty() bool {
	return p.ScheduledAt == nil && p.DurationMin == nil && p.Status == nil && p.PieceID == nil &&
		!p.ClearPiece && p.CancelReason == nil && p.ActualMin == nil && p.Note == nil
}
