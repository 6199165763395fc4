package models

import "time"

// Student is a roster entry billed at LessonRate per lesson.
type Student struct {
	ID         string    `db:"id" json:"id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	Name       string    `db:"name" json:"name"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	LessonRate int64     `db:"lesson_rate" json:"lesson_rate"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	TeacherID string
	Search    string
	Page      int
	PageSize  int
}

// StudentSummary is the compact student embedded in lesson payloads.
type StudentSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	LessonRate int64   `json:"lesson_rate"`
}
