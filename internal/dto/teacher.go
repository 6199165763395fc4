package dto

// EnsureTeacherRequest captures POST /teacher/profile.
type EnsureTeacherRequest struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=120"`
}

// UpdateTeacherRequest captures PUT /teacher/profile.
type UpdateTeacherRequest struct {
	DisplayName    *string `json:"displayName,omitempty" validate:"omitempty,min=1,max=120"`
	PerSessionRate *int64  `json:"perSessionRate,omitempty" validate:"omitempty,min=0"`
	Currency       *string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}
