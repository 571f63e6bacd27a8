package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/database"
	"github.com/taskmaster/todos/internal/ports"
)

// SQLStore implements ports.Store on top of sqlx. Queries are written with
// '?' placeholders and rebound for the active driver.
type SQLStore struct {
	db *database.DB
	q  sqlx.ExtContext
}

// NewSQLStore creates a store backed by the given database connection
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db, q: db.DB}
}

func (s *SQLStore) Todos() ports.TodoRepository {
	return &TodoRepositoryImpl{q: s.q}
}

func (s *SQLStore) Users() ports.UserRepository {
	return &UserRepositoryImpl{q: s.q}
}

// WithinTransaction runs fn inside a database transaction
func (s *SQLStore) WithinTransaction(ctx context.Context, fn func(tx ports.Store) error) error {
	if _, nested := s.q.(*sqlx.Tx); nested {
		return fn(s)
	}

	var fnErr error
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		fnErr = fn(&SQLStore{db: s.db, q: tx})
		return fnErr
	})
	if err != nil && err != fnErr {
		// begin, commit or rollback failed
		return storeError("transaction", err)
	}
	return err
}

func storeError(op string, err error) error {
	return &entities.StoreError{Op: op, Err: err}
}

// isUniqueViolation recognizes unique constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
