package users

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest applies only the fields present in the payload. A new
// password is re-hashed before it is stored.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	IsActive *bool   `json:"is_active"`
}
