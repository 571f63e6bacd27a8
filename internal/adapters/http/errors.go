package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

// toHTTPError maps a service error onto the HTTP error taxonomy. Anything
// not recognised becomes a generic 500 carrying the original error as its
// internal cause, so the error handler can log it without exposing it.
func toHTTPError(err error) error {
	var (
		httpErr       *echo.HTTPError
		validationErr *entities.ValidationError
		fieldErrs     validator.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{
			Message: validationErr.Error(),
			Field:   validationErr.Field,
		})
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		first := fieldErrs[0]
		return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{
			Message: fmt.Sprintf("%s: failed on the '%s' rule", first.Field(), first.Tag()),
			Field:   first.Field(),
		})
	case errors.Is(err, entities.ErrTodoNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ports.ErrorResponse{Message: "Todo not found"})
	case errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ports.ErrorResponse{Message: "User not found"})
	case errors.Is(err, entities.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, ports.ErrorResponse{Message: entities.ErrUsernameTaken.Error(), Field: "username"})
	case errors.Is(err, entities.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, ports.ErrorResponse{Message: entities.ErrEmailTaken.Error(), Field: "email"})
	case errors.Is(err, entities.ErrUserInactive):
		return echo.NewHTTPError(http.StatusForbidden, ports.ErrorResponse{Message: entities.ErrUserInactive.Error()})
	case errors.Is(err, entities.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, ports.ErrorResponse{Message: "Invalid token"})
	}

	return echo.NewHTTPError(http.StatusInternalServerError, ports.ErrorResponse{
		Message: "Internal server error",
	}).SetInternal(err)
}

func badRequest(field, message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{Message: message, Field: field})
}

// bindError replaces echo's binder message with a stable one.
func bindError(err error) error {
	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) {
		return toHTTPError(validationErr)
	}
	return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{
		Message: "Invalid request format",
	}).SetInternal(err)
}
