package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/taskmaster/todos/internal/adapters/http"
	"github.com/taskmaster/todos/internal/ports"
)

// identityMiddleware attaches the token subject to the request when a bearer
// token is present. Requests without an Authorization header pass through.
func (s *Server) identityMiddleware(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
					"path":  c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(httpHandlers.UserContextKey, claims.UserID)

			return next(c)
		}
	}
}
