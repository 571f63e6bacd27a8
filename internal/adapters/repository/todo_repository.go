package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

const todoColumns = `id, owner_id, text, completed, created_at, completed_at,
	category, priority, due_at, recurrence, parent_id`

// priority rank used for listing: High < Medium < Low
const priorityOrder = `CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 3 ELSE 4 END`

// TodoRepositoryImpl implements the TodoRepository interface
type TodoRepositoryImpl struct {
	q sqlx.ExtContext
}

func (r *TodoRepositoryImpl) Create(ctx context.Context, todo *entities.Todo) error {
	query := `
		INSERT INTO todos (owner_id, text, completed, created_at, completed_at,
			category, priority, due_at, recurrence, parent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := r.q.QueryRowxContext(ctx, r.q.Rebind(query),
		todo.OwnerID, todo.Text, todo.Completed, todo.CreatedAt.UTC(), utcPtr(todo.CompletedAt),
		todo.Category, todo.Priority, utcPtr(todo.DueAt), todo.Recurrence, todo.ParentID,
	).Scan(&todo.ID)
	if err != nil {
		return storeError("create todo", err)
	}

	return nil
}

func (r *TodoRepositoryImpl) GetByID(ctx context.Context, scope ports.Scope, id int64) (*entities.Todo, error) {
	conditions, args := scopeConditions(scope, []string{"id = ?"}, []interface{}{id})
	query := fmt.Sprintf("SELECT %s FROM todos WHERE %s", todoColumns, strings.Join(conditions, " AND "))

	var todo entities.Todo
	err := sqlx.GetContext(ctx, r.q, &todo, r.q.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTodoNotFound
		}
		return nil, storeError("get todo", err)
	}

	return &todo, nil
}

func (r *TodoRepositoryImpl) List(ctx context.Context, scope ports.Scope, filter ports.TodoFilter) ([]*entities.Todo, error) {
	var conditions []string
	var args []interface{}

	if filter.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, *filter.Completed)
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *filter.Category)
	}
	if filter.DueAfter != nil {
		conditions = append(conditions, "due_at >= ?")
		args = append(args, filter.DueAfter.UTC())
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_at < ?")
		args = append(args, filter.DueBefore.UTC())
	}
	if filter.RecurringOnly {
		conditions = append(conditions, "recurrence <> 'none'")
	}

	conditions, args = scopeConditions(scope, conditions, args)

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM todos %s ORDER BY %s, created_at DESC, id DESC`,
		todoColumns, whereClause, priorityOrder)
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var todos []*entities.Todo
	if err := sqlx.SelectContext(ctx, r.q, &todos, r.q.Rebind(query), args...); err != nil {
		return nil, storeError("list todos", err)
	}

	return todos, nil
}

func (r *TodoRepositoryImpl) Update(ctx context.Context, scope ports.Scope, todo *entities.Todo) error {
	conditions, args := scopeConditions(scope, []string{"id = ?"}, []interface{}{todo.ID})
	query := `
		UPDATE todos
		SET text = ?, completed = ?, completed_at = ?, category = ?, priority = ?,
			due_at = ?, recurrence = ?
		WHERE ` + strings.Join(conditions, " AND ")

	args = append([]interface{}{
		todo.Text, todo.Completed, utcPtr(todo.CompletedAt), todo.Category, todo.Priority,
		utcPtr(todo.DueAt), todo.Recurrence,
	}, args...)

	result, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return storeError("update todo", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("update todo", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTodoNotFound
	}

	return nil
}

func (r *TodoRepositoryImpl) Delete(ctx context.Context, scope ports.Scope, id int64) error {
	conditions, args := scopeConditions(scope, []string{"id = ?"}, []interface{}{id})
	query := "DELETE FROM todos WHERE " + strings.Join(conditions, " AND ")

	result, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return storeError("delete todo", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("delete todo", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTodoNotFound
	}

	return nil
}

func (r *TodoRepositoryImpl) Categories(ctx context.Context, scope ports.Scope) ([]string, error) {
	conditions, args := scopeConditions(scope, []string{"category <> ''"}, nil)
	query := "SELECT DISTINCT category FROM todos WHERE " + strings.Join(conditions, " AND ") + " ORDER BY category"

	var categories []string
	if err := sqlx.SelectContext(ctx, r.q, &categories, r.q.Rebind(query), args...); err != nil {
		return nil, storeError("list categories", err)
	}

	return categories, nil
}

// scopeConditions appends the owner restriction, if any.
func scopeConditions(scope ports.Scope, conditions []string, args []interface{}) ([]string, []interface{}) {
	if scope.OwnerID != nil {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, *scope.OwnerID)
	}
	return conditions, args
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
