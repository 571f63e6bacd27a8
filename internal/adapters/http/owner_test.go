package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/domain/entities"
)

func newContext(target string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *entities.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	return ve.Field
}

func TestOwnerResolverPrecedence(t *testing.T) {
	tokenOwner := uuid.New()
	bodyOwner := uuid.New()
	queryOwner := uuid.New()

	tests := []struct {
		name        string
		multiTenant bool
		token       *uuid.UUID
		body        *uuid.UUID
		query       string
		want        *uuid.UUID
		wantField   string
	}{
		{name: "token wins", token: &tokenOwner, body: &bodyOwner, query: queryOwner.String(), want: &tokenOwner},
		{name: "body over query", body: &bodyOwner, query: queryOwner.String(), want: &bodyOwner},
		{name: "query", query: queryOwner.String(), want: &queryOwner},
		{name: "none in single-user mode"},
		{name: "none in multi-tenant mode", multiTenant: true, wantField: "owner_id"},
		{name: "malformed query", query: "nope", wantField: "owner_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/todos"
			if tt.query != "" {
				target += "?owner_id=" + tt.query
			}
			c := newContext(target)
			if tt.token != nil {
				c.Set(UserContextKey, tt.token.String())
			}

			got, err := OwnerResolver{MultiTenant: tt.multiTenant}.Resolve(c, tt.body)
			if tt.wantField != "" {
				if field := fieldOf(t, err); field != tt.wantField {
					t.Errorf("field = %q, want %q", field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Resolve() = %v, want nil", got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTodoFilter(t *testing.T) {
	c := newContext("/todos?completed=false&priority=High&category=Work&due_after=2024-03-01&due_before=2024-04-01T00:00:00Z&recurring=true&limit=5")

	filter, err := parseTodoFilter(c, time.UTC)
	if err != nil {
		t.Fatalf("parseTodoFilter() error = %v", err)
	}

	if filter.Completed == nil || *filter.Completed {
		t.Errorf("completed = %v, want false", filter.Completed)
	}
	if filter.Priority == nil || *filter.Priority != entities.PriorityHigh {
		t.Errorf("priority = %v, want High", filter.Priority)
	}
	if filter.Category == nil || *filter.Category != "Work" {
		t.Errorf("category = %v, want Work", filter.Category)
	}
	if filter.DueAfter == nil || !filter.DueAfter.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due_after = %v", filter.DueAfter)
	}
	if filter.DueBefore == nil || !filter.DueBefore.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due_before = %v", filter.DueBefore)
	}
	if !filter.RecurringOnly || filter.Limit != 5 {
		t.Errorf("recurring = %v, limit = %d", filter.RecurringOnly, filter.Limit)
	}
}

func TestParseTodoFilterRejects(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{"completed=yes-ish", "completed"},
		{"priority=urgent", "priority"},
		{"due_after=soon", "due_after"},
		{"due_before=2024-02-30", "due_before"},
		{"recurring=2", "recurring"},
		{"limit=-1", "limit"},
		{"limit=ten", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := parseTodoFilter(newContext("/todos?"+tt.query), time.UTC)
			if field := fieldOf(t, err); field != tt.field {
				t.Errorf("field = %q, want %q", field, tt.field)
			}
		})
	}
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", entities.NewValidationError("text", "is required"), http.StatusBadRequest},
		{"todo not found", entities.ErrTodoNotFound, http.StatusNotFound},
		{"wrapped user not found", errors.Join(errors.New("lookup"), entities.ErrUserNotFound), http.StatusNotFound},
		{"username taken", entities.ErrUsernameTaken, http.StatusConflict},
		{"email taken", entities.ErrEmailTaken, http.StatusConflict},
		{"inactive", entities.ErrUserInactive, http.StatusForbidden},
		{"invalid token", entities.ErrInvalidToken, http.StatusUnauthorized},
		{"store failure", &entities.StoreError{Op: "list todos", Err: errors.New("disk full")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var he *echo.HTTPError
			if !errors.As(toHTTPError(tt.err), &he) {
				t.Fatal("expected an *echo.HTTPError")
			}
			if he.Code != tt.code {
				t.Errorf("code = %d, want %d", he.Code, tt.code)
			}
			if tt.code == http.StatusInternalServerError && he.Internal == nil {
				t.Error("500s should keep the cause as the internal error")
			}
		})
	}
}
