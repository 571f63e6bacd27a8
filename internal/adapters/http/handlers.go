package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

// AuthHandler handles the identity stand-in
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// IssueToken godoc
// @Summary Issue an access token
// @Description Identity stand-in: returns a bearer token for an existing active user. No credentials are checked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.TokenRequest true "User"
// @Success 200 {object} ports.TokenResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 403 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req ports.TokenRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	response, err := h.authService.IssueToken(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Token request failed", "error", err, "username", req.Username)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// UserHandler handles user-related requests
type UserHandler struct {
	userService ports.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService ports.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body ports.CreateUserRequest true "User data"
// @Success 201 {object} entities.User
// @Failure 400 {object} ports.ErrorResponse
// @Failure 409 {object} ports.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req ports.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Create user failed", "error", err, "username", req.Username)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List active users
// @Tags users
// @Produce json
// @Success 200 {array} entities.User
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListActiveUsers(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} entities.User
// @Failure 404 {object} ports.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest("id", "Invalid user ID")
	}

	user, err := h.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Delete a user together with all of its todos
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} ports.MessageResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest("id", "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), userID); err != nil {
		return toHTTPError(err)
	}

	h.logger.Infow("User deleted", "user_id", userID)

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "User deleted successfully"})
}
