package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shelfable/bookstore/internal/auth"
	"github.com/shelfable/bookstore/internal/domain"
	"github.com/shelfable/bookstore/internal/repository"
	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

// UserService implements administrative user management.
type UserService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, roles repository.RoleRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, roles: roles, logger: logger}
}

// CreateUserInput holds the parameters for creating a user administratively.
type CreateUserInput struct {
	Username  string
	FirstName string
	LastName  string
	Password  string
	RoleIDs   []string
}

// UpdateUserInput holds the parameters for updating a user's profile.
type UpdateUserInput struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// Create adds a user account with an initial set of roles. Unlike
// self-registration, roles are assigned up front; user row and role
// assignments are written in one transaction.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	for _, roleID := range input.RoleIDs {
		if _, err := s.roles.GetByID(ctx, roleID); err != nil {
			return nil, apperrors.NotFound("role", roleID)
		}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user, input.RoleIDs); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("reload created user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.Int("role_count", len(input.RoleIDs)),
	)

	return created, nil
}

// List returns all users with roles and permissions attached.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get retrieves a user by ID with roles and permissions attached.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Update modifies a user's profile fields.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.Username != nil {
		if *input.Username == "" {
			return nil, apperrors.InvalidInput("username must not be empty")
		}
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// SetRoles replaces a user's role assignments. Every role must exist; the
// user is returned freshly loaded so the response reflects the new grants.
func (s *UserService) SetRoles(ctx context.Context, userID string, roleIDs []string) (*domain.User, error) {
	for _, roleID := range roleIDs {
		if _, err := s.roles.GetByID(ctx, roleID); err != nil {
			return nil, apperrors.NotFound("role", roleID)
		}
	}

	if err := s.users.SetRoles(ctx, userID, roleIDs); err != nil {
		return nil, fmt.Errorf("set user roles: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload user after role change: %w", err)
	}

	s.logger.InfoContext(ctx, "user roles updated",
		slog.String("user_id", userID),
		slog.Int("role_count", len(roleIDs)),
	)

	return user, nil
}

// Delete removes a user and their role assignments.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}
