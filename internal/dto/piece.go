package dto

// CreatePieceRequest captures POST /pieces.
type CreatePieceRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Difficulty  int     `json:"difficulty" validate:"min=1,max=5"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdatePieceRequest captures PUT /pieces/:id.
type UpdatePieceRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Difficulty  *int    `json:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// PieceQuery is the query string of GET /pieces.
type PieceQuery struct {
	Search     string `form:"search"`
	Difficulty int    `form:"difficulty" validate:"omitempty,min=1,max=5"`
}
