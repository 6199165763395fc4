package models

import (
	"strings"
	"time"
)

// AttendanceStatus records how a lesson was attended.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceMakeup  AttendanceStatus = "MAKEUP"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceMakeup:
		return true
	}
	return false
}

// ParseAttendanceStatus accepts any casing.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	s := AttendanceStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// LessonStatus maps an attendance outcome onto the lesson lifecycle.
func (s AttendanceStatus) LessonStatus() LessonStatus {
	if s == AttendanceAbsent {
		return LessonStatusCancelled
	}
	return LessonStatusComplete
}

// Attendance is the per-lesson attendance detail, at most one per lesson.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	LessonID  string           `db:"lesson_id" json:"lesson_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	ActualMin int              `db:"actual_min" json:"actual_min"`
	Reason    *string          `db:"reason" json:"reason,omitempty"`
	Note      *string          `db:"note" json:"note,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
