package models

import "time"

// Piece is a repertoire item. Difficulty is an ordinal from 1 to 5.
type Piece struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Title       string    `db:"title" json:"title"`
	Difficulty  int       `db:"difficulty" json:"difficulty"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PieceFilter narrows the repertoire listing.
type PieceFilter struct {
	TeacherID  string
	Search     string
	Difficulty *int
}

// PieceSummary is the compact piece embedded in lesson payloads.
type PieceSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
