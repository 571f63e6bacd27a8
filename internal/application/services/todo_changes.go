package services

import (
	"time"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

type completionTransition int

const (
	transitionNone completionTransition = iota
	transitionCompleted
	transitionReopened
)

func transitionOf(completed bool) completionTransition {
	if completed {
		return transitionCompleted
	}
	return transitionReopened
}

// todoChanges is a validated TodoPatch, ready to be applied.
type todoChanges struct {
	text       *string
	category   *string
	priority   *entities.Priority
	recurrence *entities.Recurrence
	dueAt      *time.Time
	clearDue   bool
	completed  *bool
	toggle     bool
}

// parsePatch validates every field of the patch. Nothing is applied when any
// field is invalid.
func (s *TodoService) parsePatch(patch ports.TodoPatch) (todoChanges, error) {
	var changes todoChanges

	if patch.Text != nil {
		// an empty text is ignored rather than rejected
		if text := entities.NormalizeText(*patch.Text); text != "" {
			changes.text = &text
		}
	}

	if patch.Category != nil {
		if category := entities.NormalizeText(*patch.Category); category != "" {
			changes.category = &category
		}
	}

	if patch.Priority != nil {
		if *patch.Priority == "" {
			return todoChanges{}, entities.NewValidationError("priority", "must be one of High, Medium, Low")
		}
		priority, err := entities.ParsePriority(*patch.Priority)
		if err != nil {
			return todoChanges{}, err
		}
		changes.priority = &priority
	}

	if patch.Recurrence != nil {
		if *patch.Recurrence == "" {
			return todoChanges{}, entities.NewValidationError("recurrence", "must be one of none, daily, weekly, monthly")
		}
		recurrence, err := entities.ParseRecurrence(*patch.Recurrence)
		if err != nil {
			return todoChanges{}, err
		}
		changes.recurrence = &recurrence
	}

	if patch.DueAt != nil {
		if entities.NormalizeText(*patch.DueAt) == "" {
			changes.clearDue = true
		} else {
			dueAt, err := entities.ParseTimestamp("due_at", *patch.DueAt, s.location)
			if err != nil {
				return todoChanges{}, err
			}
			changes.dueAt = &dueAt
		}
	}

	changes.completed = patch.Completed

	return changes, nil
}

// applyTo copies the field changes onto todo and reports whether anything
// differs. Completion is handled separately by the caller.
func (c todoChanges) applyTo(todo *entities.Todo) bool {
	changed := false

	if c.text != nil && *c.text != todo.Text {
		todo.Text = *c.text
		changed = true
	}
	if c.category != nil && *c.category != todo.Category {
		todo.Category = *c.category
		changed = true
	}
	if c.priority != nil && *c.priority != todo.Priority {
		todo.Priority = *c.priority
		changed = true
	}
	if c.recurrence != nil && *c.recurrence != todo.Recurrence {
		todo.Recurrence = *c.recurrence
		changed = true
	}

	switch {
	case c.clearDue:
		if todo.DueAt != nil {
			todo.DueAt = nil
			changed = true
		}
	case c.dueAt != nil:
		if todo.DueAt == nil || !todo.DueAt.Equal(*c.dueAt) {
			at := *c.dueAt
			todo.DueAt = &at
			changed = true
		}
	}

	return changed
}
