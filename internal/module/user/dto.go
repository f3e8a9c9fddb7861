package user

import "github.com/simp-lee/userapi/internal/domain"

// CreateUserRequest represents the input for creating a new user.
// Password is optional; when present it is stored as a bcrypt hash.
type CreateUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateUserRequest represents the input for replacing an existing user.
type UpdateUserRequest struct {
	Name  string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" form:"email" binding:"required,email"`
}

// PatchUserRequest represents the input for a partial update. Omitted fields
// are left unchanged.
type PatchUserRequest struct {
	Name  *string `json:"name" form:"name" binding:"omitempty,min=2,max=100"`
	Email *string `json:"email" form:"email" binding:"omitempty,email"`
}

func (r PatchUserRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Email: r.Email}
}

// SetPasswordRequest represents the input for the set_password action.
type SetPasswordRequest struct {
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}
