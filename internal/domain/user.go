package domain

import (
	"context"
	"encoding/json"

	"github.com/simp-lee/pagination"
)

// User represents a user in the system.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
}

// HasPassword reports whether a password has been set for the user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// MarshalJSON adds has_password so clients can tell whether set_password has
// been used without ever seeing the hash.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		HasPassword bool `json:"has_password"`
	}{plain(u), u.HasPassword()})
}

// UserPatch carries the fields of a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Name  *string
	Email *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context, req PageRequest) (*pagination.Pagination[User], error)
	// Modify loads the user, applies fn, and saves the result in one transaction.
	// When fn returns an error nothing is written.
	Modify(ctx context.Context, id uint, fn func(user *User) error) (*User, error)
	Delete(ctx context.Context, id uint) error
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, name, email, password string) (*User, error)
	GetUser(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, req PageRequest) (*pagination.Pagination[User], error)
	UpdateUser(ctx context.Context, id uint, name, email string) (*User, error)
	PatchUser(ctx context.Context, id uint, patch UserPatch) (*User, error)
	SetPassword(ctx context.Context, id uint, password string) error
	DeleteUser(ctx context.Context, id uint) error
}
