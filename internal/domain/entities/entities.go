package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTodoNotFound  = errors.New("todo not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrUserInactive  = errors.New("user is inactive")
	ErrInvalidToken  = errors.New("invalid token")
)

// ValidationError reports a bad or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure of the underlying persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Enums and types
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the levels in rank order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority validates a raw priority value. An empty value yields the default.
func ParsePriority(raw string) (Priority, error) {
	if raw == "" {
		return PriorityMedium, nil
	}
	for _, p := range Priorities {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", NewValidationError("priority", "must be one of High, Medium, Low (got %q)", raw)
}

// Rank orders priorities for listing: High < Medium < Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// ParseRecurrence validates a raw recurrence value. An empty value yields none.
func ParseRecurrence(raw string) (Recurrence, error) {
	switch Recurrence(raw) {
	case "":
		return RecurrenceNone, nil
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return Recurrence(raw), nil
	}
	return "", NewValidationError("recurrence", "must be one of none, daily, weekly, monthly (got %q)", raw)
}

const DefaultCategory = "General"

// DefaultCategories is returned when no todo carries a category yet.
var DefaultCategories = []string{"General", "Work", "Personal", "Shopping", "Health"}

// Todo represents a single task item
type Todo struct {
	ID          int64      `json:"id" db:"id"`
	OwnerID     *uuid.UUID `json:"owner_id" db:"owner_id"`
	Text        string     `json:"text" db:"text"`
	Completed   bool       `json:"completed" db:"completed"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	Category    string     `json:"category" db:"category"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueAt       *time.Time `json:"due_at" db:"due_at"`
	Recurrence  Recurrence `json:"recurrence" db:"recurrence"`
	ParentID    *int64     `json:"parent_id" db:"parent_id"`
}

// User represents an owner of todos
type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     *string    `json:"email" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	LastLogin *time.Time `json:"last_login" db:"last_login"`
	Active    bool       `json:"active" db:"active"`
}

// Business logic methods for Todo

func (t *Todo) IsRecurring() bool {
	return t.Recurrence != "" && t.Recurrence != RecurrenceNone
}

func (t *Todo) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueAt != nil && t.DueAt.Before(now)
}

// MarkCompleted flips the completion flag and keeps completed_at consistent.
// It reports whether the state actually changed.
func (t *Todo) MarkCompleted(completed bool, now time.Time) bool {
	if t.Completed == completed {
		return false
	}
	t.Completed = completed
	if completed {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return true
}

// NextOccurrence builds the follow-up todo for a recurring task. It returns
// nil for non-recurring todos. Calendar arithmetic runs in loc, whatever
// zone the stored due date came back in.
func (t *Todo) NextOccurrence(now time.Time, loc *time.Location) *Todo {
	if !t.IsRecurring() {
		return nil
	}
	due := t.DueAt
	if due != nil && loc != nil {
		local := due.In(loc)
		due = &local
	}
	parentID := t.ID
	return &Todo{
		OwnerID:    t.OwnerID,
		Text:       t.Text,
		Category:   t.Category,
		Priority:   t.Priority,
		Recurrence: t.Recurrence,
		DueAt:      NextDue(due, t.Recurrence),
		ParentID:   &parentID,
		CreatedAt:  now,
	}
}

// Clone returns a deep copy of the todo.
func (t *Todo) Clone() *Todo {
	c := *t
	if t.OwnerID != nil {
		id := *t.OwnerID
		c.OwnerID = &id
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	if t.DueAt != nil {
		at := *t.DueAt
		c.DueAt = &at
	}
	if t.ParentID != nil {
		id := *t.ParentID
		c.ParentID = &id
	}
	return &c
}

// NormalizeText trims surrounding whitespace from a todo description.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// Business logic methods for User

func (u *User) Clone() *User {
	c := *u
	if u.Email != nil {
		e := *u.Email
		c.Email = &e
	}
	if u.LastLogin != nil {
		at := *u.LastLogin
		c.LastLogin = &at
	}
	return &c
}
