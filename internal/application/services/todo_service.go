package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/infrastructure/metrics"
	"github.com/taskmaster/todos/internal/ports"
)

// TodoService handles the todo lifecycle: creation, completion (including
// spawning the next occurrence of recurring todos), edits and deletion.
type TodoService struct {
	store    ports.Store
	logger   *logger.Logger
	metrics  *metrics.Metrics
	location *time.Location
	now      func() time.Time
}

// NewTodoService creates a new todo service
func NewTodoService(store ports.Store, loc *time.Location, logger *logger.Logger, m *metrics.Metrics) *TodoService {
	if loc == nil {
		loc = time.UTC
	}
	return &TodoService{
		store:    store,
		logger:   logger.WithComponent("todo_service"),
		metrics:  m,
		location: loc,
		now:      time.Now,
	}
}

// CreateTodo validates the request, applies defaults and persists a new todo
func (s *TodoService) CreateTodo(ctx context.Context, req ports.CreateTodoRequest) (*entities.Todo, error) {
	text := entities.NormalizeText(req.Description())
	if text == "" {
		return nil, entities.NewValidationError("text", "is required")
	}

	priority, err := entities.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	recurrence, err := entities.ParseRecurrence(req.Recurrence)
	if err != nil {
		return nil, err
	}

	category := entities.NormalizeText(req.Category)
	if category == "" {
		category = entities.DefaultCategory
	}

	var dueAt *time.Time
	if req.DueAt != nil && entities.NormalizeText(*req.DueAt) != "" {
		parsed, err := entities.ParseTimestamp("due_at", *req.DueAt, s.location)
		if err != nil {
			return nil, err
		}
		dueAt = &parsed
	}

	todo := &entities.Todo{
		OwnerID:    req.OwnerID,
		Text:       text,
		Category:   category,
		Priority:   priority,
		DueAt:      dueAt,
		Recurrence: recurrence,
		ParentID:   req.ParentID,
		CreatedAt:  s.now(),
	}

	err = s.store.WithinTransaction(ctx, func(tx ports.Store) error {
		if req.OwnerID != nil {
			if _, err := tx.Users().GetByID(ctx, *req.OwnerID); err != nil {
				return err
			}
		}

		if req.ParentID != nil {
			scope := ports.Scope{OwnerID: req.OwnerID}
			if _, err := tx.Todos().GetByID(ctx, scope, *req.ParentID); err != nil {
				if errors.Is(err, entities.ErrTodoNotFound) {
					return entities.NewValidationError("parent_id", "unknown todo %d", *req.ParentID)
				}
				return err
			}
		}

		return tx.Todos().Create(ctx, todo)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.TodoCreated()
	s.logger.LogTodoEvent("created", todo.ID, map[string]interface{}{
		"priority":   todo.Priority,
		"recurrence": todo.Recurrence,
	})

	return todo, nil
}

// GetTodo retrieves a todo visible in the given scope
func (s *TodoService) GetTodo(ctx context.Context, scope ports.Scope, id int64) (*entities.Todo, error) {
	todo, err := s.store.Todos().GetByID(ctx, scope, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get todo %d: %w", id, err)
	}
	return todo, nil
}

// ListTodos lists todos sorted by priority rank, newest first within a rank
func (s *TodoService) ListTodos(ctx context.Context, scope ports.Scope, filter ports.TodoFilter) ([]*entities.Todo, error) {
	todos, err := s.store.Todos().List(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// SetCompletion moves a todo to the desired completion state. Completing a
// recurring todo spawns its next occurrence in the same transaction.
func (s *TodoService) SetCompletion(ctx context.Context, scope ports.Scope, id int64, completed bool) (*ports.CompletionResult, error) {
	return s.apply(ctx, scope, id, todoChanges{completed: &completed})
}

// ToggleCompletion flips the completion state of a todo
func (s *TodoService) ToggleCompletion(ctx context.Context, scope ports.Scope, id int64) (*ports.CompletionResult, error) {
	return s.apply(ctx, scope, id, todoChanges{toggle: true})
}

// EditTodo applies a partial update. Every field is validated before
// anything is written; an invalid field leaves the todo untouched.
func (s *TodoService) EditTodo(ctx context.Context, scope ports.Scope, id int64, patch ports.TodoPatch) (*ports.CompletionResult, error) {
	changes, err := s.parsePatch(patch)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, scope, id, changes)
}

// apply loads the todo, applies the changes and, when the todo moved from
// pending to completed, spawns its next occurrence. Everything happens in
// one transaction so the completion and the spawn persist together or not at all.
func (s *TodoService) apply(ctx context.Context, scope ports.Scope, id int64, changes todoChanges) (*ports.CompletionResult, error) {
	var (
		result     *ports.CompletionResult
		transition completionTransition
	)

	err := s.store.WithinTransaction(ctx, func(tx ports.Store) error {
		todo, err := tx.Todos().GetByID(ctx, scope, id)
		if err != nil {
			return err
		}

		now := s.now()
		changed := changes.applyTo(todo)

		desired := todo.Completed
		switch {
		case changes.toggle:
			desired = !todo.Completed
		case changes.completed != nil:
			desired = *changes.completed
		}
		if todo.MarkCompleted(desired, now) {
			changed = true
			transition = transitionOf(desired)
		}

		result = &ports.CompletionResult{Todo: todo}
		if !changed {
			return nil
		}

		if err := tx.Todos().Update(ctx, scope, todo); err != nil {
			return err
		}

		if transition == transitionCompleted {
			if next := todo.NextOccurrence(now, s.location); next != nil {
				if err := tx.Todos().Create(ctx, next); err != nil {
					return err
				}
				result.Spawned = next
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update todo %d: %w", id, err)
	}

	s.record(result, transition)
	return result, nil
}

// DeleteTodo deletes a todo. Spawned occurrences are left in place.
func (s *TodoService) DeleteTodo(ctx context.Context, scope ports.Scope, id int64) error {
	if err := s.store.Todos().Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete todo %d: %w", id, err)
	}

	s.metrics.TodoDeleted()
	s.logger.LogTodoEvent("deleted", id, nil)

	return nil
}

// Categories returns the distinct categories in use, or the default list
// when there are none yet
func (s *TodoService) Categories(ctx context.Context, scope ports.Scope) ([]string, error) {
	categories, err := s.store.Todos().Categories(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if len(categories) == 0 {
		return append([]string(nil), entities.DefaultCategories...), nil
	}
	return categories, nil
}

func (s *TodoService) record(result *ports.CompletionResult, transition completionTransition) {
	switch transition {
	case transitionCompleted:
		s.metrics.TodoCompleted()
		s.logger.LogTodoEvent("completed", result.Todo.ID, nil)
	case transitionReopened:
		s.metrics.TodoReopened()
		s.logger.LogTodoEvent("reopened", result.Todo.ID, nil)
	}

	if result.Spawned != nil {
		s.metrics.OccurrenceSpawned(string(result.Spawned.Recurrence))
		s.logger.LogTodoEvent("occurrence_spawned", result.Spawned.ID, map[string]interface{}{
			"parent_id": result.Todo.ID,
		})
	}
}
