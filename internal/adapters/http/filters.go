package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

// parseTodoFilter reads the list filter from the query string:
// completed, priority, category, due_after, due_before, recurring and limit.
func parseTodoFilter(c echo.Context, loc *time.Location) (ports.TodoFilter, error) {
	var filter ports.TodoFilter

	if raw := c.QueryParam("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, entities.NewValidationError("completed", "must be true or false")
		}
		filter.Completed = &completed
	}

	if raw := c.QueryParam("priority"); raw != "" {
		priority, err := entities.ParsePriority(raw)
		if err != nil {
			return filter, err
		}
		filter.Priority = &priority
	}

	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		filter.Category = &raw
	}

	if raw := c.QueryParam("due_after"); raw != "" {
		after, err := entities.ParseTimestamp("due_after", raw, loc)
		if err != nil {
			return filter, err
		}
		filter.DueAfter = &after
	}

	if raw := c.QueryParam("due_before"); raw != "" {
		before, err := entities.ParseTimestamp("due_before", raw, loc)
		if err != nil {
			return filter, err
		}
		filter.DueBefore = &before
	}

	if raw := c.QueryParam("recurring"); raw != "" {
		recurring, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, entities.NewValidationError("recurring", "must be true or false")
		}
		filter.RecurringOnly = recurring
	}

	limit, err := parseLimit(c)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit

	return filter, nil
}

// parseLimit reads an optional positive limit; zero means "not given".
func parseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, entities.NewValidationError("limit", "must be a positive integer")
	}
	return limit, nil
}

func parseTodoID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, entities.NewValidationError("id", "invalid todo id %q", c.Param("id"))
	}
	return id, nil
}
