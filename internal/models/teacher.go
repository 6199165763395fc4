package models

import "time"

// DefaultCurrency is assigned to new teacher profiles.
const DefaultCurrency = "VND"

// Teacher is the tenant that owns students, pieces and lessons.
type Teacher struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	PerSessionRate int64     `db:"per_session_rate" json:"per_session_rate"`
	Currency       string    `db:"currency" json:"currency"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
