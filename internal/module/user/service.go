package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/pagination"

	"github.com/simp-lee/userapi/internal/domain"
)

// userService implements domain.UserService.
type userService struct {
	repo domain.UserRepository
	cost int
}

// ServiceOption configures the user service.
type ServiceOption func(*userService)

// WithBcryptCost overrides the bcrypt cost used for password hashes.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *userService) { s.cost = cost }
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository, opts ...ServiceOption) domain.UserService {
	s := &userService{repo: repo, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser validates input, builds a User, and persists it via the repository.
// An empty password leaves the user without credentials.
func (s *userService) CreateUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:  name,
		Email: email,
	}

	if password != "" {
		hash, err := s.hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, req domain.PageRequest) (*pagination.Pagination[domain.User], error) {
	return s.repo.List(ctx, req)
}

// UpdateUser replaces the name and email of an existing user.
func (s *userService) UpdateUser(ctx context.Context, id uint, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return s.repo.Modify(ctx, id, func(user *domain.User) error {
		user.Name = name
		user.Email = email
		return nil
	})
}

// PatchUser applies the non-nil fields of patch. An empty patch returns the
// user unchanged.
func (s *userService) PatchUser(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	if patch.Empty() {
		return s.repo.GetByID(ctx, id)
	}

	return s.repo.Modify(ctx, id, func(user *domain.User) error {
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		return nil
	})
}

// SetPassword replaces the password hash of an existing user.
func (s *userService) SetPassword(ctx context.Context, id uint, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.repo.Modify(ctx, id, func(user *domain.User) error {
		user.PasswordHash = hash
		return nil
	})
	return err
}

// DeleteUser removes a user by ID.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *userService) hashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	switch {
	case n == 0:
		return domain.NewFieldError("name", "is required")
	case n < 2:
		return domain.NewFieldError("name", "must be at least 2 characters")
	case n > 100:
		return domain.NewFieldError("name", "must be at most 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return domain.NewFieldError("email", "is required")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Name != "" || addr.Address != trimmed {
		return domain.NewFieldError("email", "must be a valid email address")
	}
	return nil
}

// validatePassword enforces bcrypt's 72-byte input limit.
func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewFieldError("password", "must be at least 8 bytes")
	}
	if len(password) > 72 {
		return domain.NewFieldError("password", "must not exceed 72 bytes")
	}
	return nil
}
