package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/todos/internal/domain/entities"
)

const userColumns = `id, username, email, created_at, last_login, active`

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	q sqlx.ExtContext
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, username, email, created_at, last_login, active)
		VALUES (?, ?, ?, ?, ?, ?)`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		user.ID, user.Username, user.Email, user.CreatedAt.UTC(), utcPtr(user.LastLogin), user.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(strings.ToLower(err.Error()), "email") {
				return entities.ErrEmailTaken
			}
			return entities.ErrUsernameTaken
		}
		return storeError("create user", err)
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.getOne(ctx, "get user by id", "id = ?", id)
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.getOne(ctx, "get user by username", "LOWER(username) = LOWER(?)", username)
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.getOne(ctx, "get user by email", "LOWER(email) = LOWER(?)", email)
}

func (r *UserRepositoryImpl) getOne(ctx context.Context, op, condition string, arg interface{}) (*entities.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + condition

	var user entities.User
	err := sqlx.GetContext(ctx, r.q, &user, r.q.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, storeError(op, err)
	}

	return &user, nil
}

func (r *UserRepositoryImpl) ListActive(ctx context.Context) ([]*entities.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE active = ? ORDER BY username"

	var users []*entities.User
	if err := sqlx.SelectContext(ctx, r.q, &users, r.q.Rebind(query), true); err != nil {
		return nil, storeError("list users", err)
	}

	return users, nil
}

func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login = ? WHERE id = ?`

	result, err := r.q.ExecContext(ctx, r.q.Rebind(query), at.UTC(), id)
	if err != nil {
		return storeError("update last login", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("update last login", err)
	}

	if rowsAffected == 0 {
		return entities.ErrUserNotFound
	}

	return nil
}

// Delete removes the user's todos and then the user. Callers run it inside
// a transaction so both statements commit together.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM todos WHERE owner_id = ?`), id); err != nil {
		return storeError("delete user todos", err)
	}

	result, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return storeError("delete user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("delete user", err)
	}

	if rowsAffected == 0 {
		return entities.ErrUserNotFound
	}

	return nil
}
