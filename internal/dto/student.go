package dto

// CreateStudentRequest captures POST /students.
type CreateStudentRequest struct {
	Name       string  `json:"name" validate:"required,max=120"`
	AvatarURL  *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	LessonRate int64   `json:"lessonRate" validate:"min=0"`
}

// UpdateStudentRequest captures PUT /students/:id.
type UpdateStudentRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	AvatarURL  *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	LessonRate *int64  `json:"lessonRate,omitempty" validate:"omitempty,min=0"`
}

// StudentQuery is the query string of GET /students.
type StudentQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
