package ports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskmaster/todos/internal/domain/entities"
)

// TodoService interface for the todo lifecycle
type TodoService interface {
	CreateTodo(ctx context.Context, req CreateTodoRequest) (*entities.Todo, error)
	GetTodo(ctx context.Context, scope Scope, id int64) (*entities.Todo, error)
	ListTodos(ctx context.Context, scope Scope, filter TodoFilter) ([]*entities.Todo, error)
	SetCompletion(ctx context.Context, scope Scope, id int64, completed bool) (*CompletionResult, error)
	ToggleCompletion(ctx context.Context, scope Scope, id int64) (*CompletionResult, error)
	EditTodo(ctx context.Context, scope Scope, id int64, patch TodoPatch) (*CompletionResult, error)
	DeleteTodo(ctx context.Context, scope Scope, id int64) error
	Categories(ctx context.Context, scope Scope) ([]string, error)
}

// InsightService interface for the read-only history and analytics views
type InsightService interface {
	Stats(ctx context.Context, scope Scope) (*Overview, error)
	Analytics(ctx context.Context, scope Scope) (*AnalyticsReport, error)
	DayHistory(ctx context.Context, scope Scope, day string) (*DayHistory, error)
	History(ctx context.Context, scope Scope, limit int) (*HistoryPage, error)
}

// UserService interface for user management operations
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*entities.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error)
	ListActiveUsers(ctx context.Context) ([]*entities.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// AuthService interface for the identity stand-in
type AuthService interface {
	IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Request/Response Types

// Todo related types
type CreateTodoRequest struct {
	Text       string     `json:"text"`
	Task       string     `json:"task"` // legacy alias for text
	Category   string     `json:"category" validate:"omitempty,max=100"`
	Priority   string     `json:"priority"`
	DueAt      *string    `json:"due_at"`
	Recurrence string     `json:"recurrence"`
	OwnerID    *uuid.UUID `json:"owner_id"`
	ParentID   *int64     `json:"parent_id"`
}

// Description returns the todo text, falling back to the legacy field.
func (r CreateTodoRequest) Description() string {
	if entities.NormalizeText(r.Text) != "" {
		return r.Text
	}
	return r.Task
}

// TodoPatch is a partial update. A nil field is absent from the request.
// DueAt pointing at an empty string clears the due date.
type TodoPatch struct {
	Text       *string
	Category   *string
	Priority   *string
	Recurrence *string
	Completed  *bool
	DueAt      *string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Category == nil && p.Priority == nil &&
		p.Recurrence == nil && p.Completed == nil && p.DueAt == nil
}

// UnmarshalJSON keeps the distinction between an absent key and an explicit
// null, which matters for due_at.
func (p *TodoPatch) UnmarshalJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	strField := func(key string) (*string, error) {
		v, ok := raw[key]
		if !ok || isNull(v) {
			return nil, nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("%s must be a string", key)
		}
		return &s, nil
	}

	if err := requireKnownField(raw); err != nil {
		return err
	}

	var err error
	if p.Text, err = strField("text"); err != nil {
		return err
	}
	if p.Text == nil || entities.NormalizeText(*p.Text) == "" {
		task, err := strField("task")
		if err != nil {
			return err
		}
		if task != nil {
			p.Text = task
		}
	}
	if p.Category, err = strField("category"); err != nil {
		return err
	}
	if p.Priority, err = strField("priority"); err != nil {
		return err
	}
	if p.Recurrence, err = strField("recurrence"); err != nil {
		return err
	}

	if v, ok := raw["completed"]; ok && !isNull(v) {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return fmt.Errorf("completed must be a boolean")
		}
		p.Completed = &b
	}

	if v, ok := raw["due_at"]; ok {
		if isNull(v) {
			empty := ""
			p.DueAt = &empty
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("due_at must be a string or null")
			}
			p.DueAt = &s
		}
	}

	return nil
}

var patchFields = map[string]bool{
	"text": true, "task": true, "category": true, "priority": true,
	"recurrence": true, "completed": true, "due_at": true,
}

// requireKnownField rejects a non-empty body that names no todo field, so
// that a typo is not mistaken for an empty toggle request.
func requireKnownField(raw map[string]json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		if patchFields[key] {
			return nil
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return entities.NewValidationError(keys[0], "is not a todo field")
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// CompletionResult carries the mutated todo and, when a recurring todo was
// completed, the spawned next occurrence.
type CompletionResult struct {
	Todo    *entities.Todo
	Spawned *entities.Todo
}

// MarshalJSON renders the todo itself, with the spawned occurrence attached
// when there is one.
func (r CompletionResult) MarshalJSON() ([]byte, error) {
	if r.Spawned == nil {
		return json.Marshal(r.Todo)
	}
	return json.Marshal(struct {
		*entities.Todo
		Spawned *entities.Todo `json:"spawned"`
	}{r.Todo, r.Spawned})
}

// User related types
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=80,username"`
	Email    *string `json:"email" validate:"omitempty,email,max=120"`
}

// Auth related types
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
}

type TokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Analytics related types

type Overview struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

type CategoryStat struct {
	Category  string `json:"category"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

type TimeMetrics struct {
	AvgCompletionHours  float64 `json:"avg_completion_hours"`
	AvgCompletionDays   float64 `json:"avg_completion_days"`
	CompletedWithTiming int     `json:"completed_with_timing"`
}

type DailyActivity struct {
	Date      string `json:"date"`
	DayName   string `json:"day_name"`
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
}

type Productivity struct {
	TodayCompleted      int     `json:"today_completed"`
	TodayCreated        int     `json:"today_created"`
	TodayCompletionRate float64 `json:"today_completion_rate"`
}

type AnalyticsReport struct {
	Overview          Overview                  `json:"overview"`
	PriorityBreakdown map[entities.Priority]int `json:"priority_breakdown"`
	CategoryStats     []CategoryStat            `json:"category_stats"`
	TimeMetrics       TimeMetrics               `json:"time_metrics"`
	DailyActivity     []DailyActivity           `json:"daily_activity"`
	Productivity      Productivity              `json:"productivity"`
	GeneratedAt       time.Time                 `json:"generated_at"`
}

// History related types

type ActivityType string

const (
	ActivityCreated             ActivityType = "created"
	ActivityCompleted           ActivityType = "completed"
	ActivityCreatedAndCompleted ActivityType = "created_and_completed"
)

// ActivityEntry is a todo annotated with what happened to it on a given day.
type ActivityEntry struct {
	*entities.Todo
	ActivityType ActivityType `json:"activity_type"`
}

type HistorySummary struct {
	TotalActivities int `json:"total_activities"`
	Created         int `json:"created"`
	Completed       int `json:"completed"`
}

type DayHistory struct {
	Date      string           `json:"date"`
	Created   []*entities.Todo `json:"-"`
	Completed []*entities.Todo `json:"-"`
	Todos     []ActivityEntry  `json:"todos"`
	Summary   HistorySummary   `json:"summary"`
}

type DaySummary struct {
	Date           string          `json:"date"`
	Todos          []ActivityEntry `json:"todos"`
	CreatedCount   int             `json:"created_count"`
	CompletedCount int             `json:"completed_count"`
}

type HistoryPage struct {
	History   []DaySummary `json:"history"`
	TotalDays int          `json:"total_days"`
}

// Response types

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
