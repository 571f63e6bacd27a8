package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/todos/internal/domain/entities"
)

// Scope restricts todo queries to one owner. It is a mandatory parameter on
// every todo query; the zero value means "all owners" (single-user mode).
type Scope struct {
	OwnerID *uuid.UUID
}

// AllOwners returns an unrestricted scope.
func AllOwners() Scope {
	return Scope{}
}

// OwnedBy returns a scope limited to the given owner.
func OwnedBy(ownerID uuid.UUID) Scope {
	return Scope{OwnerID: &ownerID}
}

// Allows reports whether the todo is visible in this scope.
func (s Scope) Allows(todo *entities.Todo) bool {
	if s.OwnerID == nil {
		return true
	}
	return todo.OwnerID != nil && *todo.OwnerID == *s.OwnerID
}

// TodoRepository defines the interface for todo data operations
type TodoRepository interface {
	Create(ctx context.Context, todo *entities.Todo) error
	GetByID(ctx context.Context, scope Scope, id int64) (*entities.Todo, error)
	List(ctx context.Context, scope Scope, filter TodoFilter) ([]*entities.Todo, error)
	Update(ctx context.Context, scope Scope, todo *entities.Todo) error
	Delete(ctx context.Context, scope Scope, id int64) error
	Categories(ctx context.Context, scope Scope) ([]string, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	ListActive(ctx context.Context) ([]*entities.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// Delete removes the user together with all of its todos.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store groups the repositories and provides transactional units of work.
type Store interface {
	Todos() TodoRepository
	Users() UserRepository
	// WithinTransaction runs fn against a transactional view of the store.
	// Everything fn writes is committed together, or rolled back if fn
	// returns an error.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// TodoFilter narrows List results.
type TodoFilter struct {
	Completed     *bool
	Priority      *entities.Priority
	Category      *string
	DueAfter      *time.Time
	DueBefore     *time.Time
	RecurringOnly bool
	Limit         int
}

// Matches applies the filter in memory; SQL adapters translate it to a WHERE clause.
func (f TodoFilter) Matches(todo *entities.Todo) bool {
	if f.Completed != nil && todo.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && todo.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && todo.Category != *f.Category {
		return false
	}
	if f.DueAfter != nil && (todo.DueAt == nil || todo.DueAt.Before(*f.DueAfter)) {
		return false
	}
	if f.DueBefore != nil && (todo.DueAt == nil || !todo.DueAt.Before(*f.DueBefore)) {
		return false
	}
	if f.RecurringOnly && !todo.IsRecurring() {
		return false
	}
	return true
}
