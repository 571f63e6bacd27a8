package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	todoService ports.TodoService
	owners      OwnerResolver
	location    *time.Location
	logger      *logger.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todoService ports.TodoService, owners OwnerResolver, loc *time.Location, logger *logger.Logger) *TodoHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TodoHandler{
		todoService: todoService,
		owners:      owners,
		location:    loc,
		logger:      logger,
	}
}

// CreateTodo godoc
// @Summary Create a todo
// @Description Create a todo. Priority defaults to Medium, category to General and recurrence to none.
// @Tags todos
// @Accept json
// @Produce json
// @Param request body ports.CreateTodoRequest true "Todo data"
// @Success 201 {object} entities.Todo
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) CreateTodo(c echo.Context) error {
	var req ports.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	owner, err := h.owners.Resolve(c, req.OwnerID)
	if err != nil {
		return toHTTPError(err)
	}
	req.OwnerID = owner

	todo, err := h.todoService.CreateTodo(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, todo)
}

// ListTodos godoc
// @Summary List todos
// @Description List todos, highest priority first and newest first within a priority
// @Tags todos
// @Produce json
// @Param completed query bool false "Completion state"
// @Param priority query string false "High, Medium or Low"
// @Param category query string false "Category"
// @Param due_after query string false "Due at or after (ISO-8601)"
// @Param due_before query string false "Due before (ISO-8601)"
// @Param recurring query bool false "Only recurring todos"
// @Param owner_id query string false "Owner"
// @Param limit query int false "Maximum number of todos"
// @Success 200 {array} entities.Todo
// @Failure 400 {object} ports.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) ListTodos(c echo.Context) error {
	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	filter, err := parseTodoFilter(c, h.location)
	if err != nil {
		return toHTTPError(err)
	}

	todos, err := h.todoService.ListTodos(c.Request().Context(), scope, filter)
	if err != nil {
		return toHTTPError(err)
	}
	if todos == nil {
		return c.JSON(http.StatusOK, []struct{}{})
	}

	return c.JSON(http.StatusOK, todos)
}

// GetTodo godoc
// @Summary Get a todo
// @Tags todos
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} entities.Todo
// @Failure 404 {object} ports.ErrorResponse
// @Router /todos/{id} [get]
func (h *TodoHandler) GetTodo(c echo.Context) error {
	id, err := parseTodoID(c)
	if err != nil {
		return toHTTPError(err)
	}

	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	todo, err := h.todoService.GetTodo(c.Request().Context(), scope, id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, todo)
}

// UpdateTodo godoc
// @Summary Update a todo
// @Description Apply a partial update. An empty body toggles completion. Completing a recurring todo
// @Description returns the spawned next occurrence under "spawned".
// @Tags todos
// @Accept json
// @Produce json
// @Param id path int true "Todo ID"
// @Param request body ports.TodoPatch false "Fields to change"
// @Success 200 {object} entities.Todo
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /todos/{id} [put]
func (h *TodoHandler) UpdateTodo(c echo.Context) error {
	id, err := parseTodoID(c)
	if err != nil {
		return toHTTPError(err)
	}

	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	var patch ports.TodoPatch
	if err := c.Bind(&patch); err != nil {
		return bindError(err)
	}

	var result *ports.CompletionResult
	if patch.IsEmpty() {
		result, err = h.todoService.ToggleCompletion(c.Request().Context(), scope, id)
	} else {
		result, err = h.todoService.EditTodo(c.Request().Context(), scope, id, patch)
	}
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// DeleteTodo godoc
// @Summary Delete a todo
// @Description Delete a todo. Occurrences spawned from it are kept.
// @Tags todos
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} ports.MessageResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(c echo.Context) error {
	id, err := parseTodoID(c)
	if err != nil {
		return toHTTPError(err)
	}

	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.todoService.DeleteTodo(c.Request().Context(), scope, id); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Todo deleted successfully"})
}

// Categories godoc
// @Summary List categories
// @Description Distinct categories in use, or the default list when there are none
// @Tags todos
// @Produce json
// @Success 200 {array} string
// @Router /categories [get]
func (h *TodoHandler) Categories(c echo.Context) error {
	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	categories, err := h.todoService.Categories(c.Request().Context(), scope)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, categories)
}
