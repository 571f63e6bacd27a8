package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

// UserService handles user-related operations
type UserService struct {
	store  ports.Store
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(store ports.Store, logger *logger.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger.WithComponent("user_service"),
	}
}

// CreateUser creates a new active user
func (s *UserService) CreateUser(ctx context.Context, req ports.CreateUserRequest) (*entities.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 {
		return nil, entities.NewValidationError("username", "must be at least 3 characters")
	}

	var email *string
	if req.Email != nil {
		if trimmed := strings.TrimSpace(*req.Email); trimmed != "" {
			email = &trimmed
		}
	}

	user := &entities.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
		Active:    true,
	}

	err := s.store.WithinTransaction(ctx, func(tx ports.Store) error {
		// Check if user already exists
		if _, err := tx.Users().GetByUsername(ctx, username); err == nil {
			return entities.ErrUsernameTaken
		} else if !errors.Is(err, entities.ErrUserNotFound) {
			return err
		}

		if email != nil {
			if _, err := tx.Users().GetByEmail(ctx, *email); err == nil {
				return entities.ErrEmailTaken
			} else if !errors.Is(err, entities.ErrUserNotFound) {
				return err
			}
		}

		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("User created successfully", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// ListActiveUsers lists the users that are still active
func (s *UserService) ListActiveUsers(ctx context.Context) ([]*entities.User, error) {
	users, err := s.store.Users().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []*entities.User{}
	}
	return users, nil
}

// DeleteUser deletes a user and all of its todos
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTransaction(ctx, func(tx ports.Store) error {
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	s.logger.Infow("User deleted successfully", "user_id", id)

	return nil
}
