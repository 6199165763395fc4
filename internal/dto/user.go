package dto

// UpdateMeRequest captures PUT /me.
type UpdateMeRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=120"`
}
