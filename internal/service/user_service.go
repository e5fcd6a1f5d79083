package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"
)

// UserService defines user management. Passwords are stored as given.
type UserService interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindAll(ctx context.Context, page, limit int) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates a new instance of UserService
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func invalidRole() error {
	return domain.Validation("validation failed", []domain.FieldError{{
		Field:   "role",
		Message: "role must be one of: " + strings.Join(domain.Roles, ", "),
	}})
}

// Create stores a new user, defaulting the role to user
func (s *userService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if !user.Role.IsValid() {
		return nil, invalidRole()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *userService) FindAll(ctx context.Context, page, limit int) ([]*domain.User, error) {
	return s.users.FindAll(ctx, page, limit)
}

func (s *userService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) Update(ctx context.Context, id string, patch *domain.UserPatch) (*domain.User, error) {
	if patch.Role != nil && !patch.Role.IsValid() {
		return nil, invalidRole()
	}
	return s.users.Update(ctx, id, patch)
}

// UpdateRole changes only the role, rejecting values outside the role enum.
func (s *userService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, invalidRole()
	}
	return s.users.UpdateRole(ctx, id, role)
}

func (s *userService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
