package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskmaster/todos/docs"
	httpHandlers "github.com/taskmaster/todos/internal/adapters/http"
	"github.com/taskmaster/todos/internal/application/services"
	"github.com/taskmaster/todos/internal/infrastructure/config"
	"github.com/taskmaster/todos/internal/infrastructure/database"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/infrastructure/metrics"
	"github.com/taskmaster/todos/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	db      *database.DB
	metrics *metrics.Metrics
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NewValidator builds the request validator. Field errors carry JSON names
// and the "username" rule accepts letters, digits and underscores.
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &CustomValidator{validator: v}
}

// New creates a new server instance. db is nil when the store is not SQL backed.
func New(cfg *config.Config, store ports.Store, db *database.DB, appLogger *logger.Logger, m *metrics.Metrics) (*Server, error) {
	if store == nil {
		return nil, errors.New("server requires a store")
	}

	e := echo.New()

	// Set custom validator
	e.Validator = NewValidator()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	loc := cfg.App.Location()
	owners := httpHandlers.OwnerResolver{MultiTenant: cfg.App.MultiTenant}

	// Initialize services
	todoService := services.NewTodoService(store, loc, appLogger, m)
	insightService := services.NewInsightService(store, loc, cfg.App.HistoryDefaultLimit, appLogger)
	userService := services.NewUserService(store, appLogger)
	authService := services.NewAuthService(store, cfg.JWT, appLogger)

	// Initialize handlers
	handlers := routeHandlers{
		todos:    httpHandlers.NewTodoHandler(todoService, owners, loc, appLogger),
		insights: httpHandlers.NewInsightHandler(insightService, owners, appLogger),
		users:    httpHandlers.NewUserHandler(userService, appLogger),
		auth:     httpHandlers.NewAuthHandler(authService, appLogger),
	}

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		db:      db,
		metrics: m,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if cfg.Metrics.Enabled && m != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(handlers, authService)

	return server, nil
}

type routeHandlers struct {
	todos    *httpHandlers.TodoHandler
	insights *httpHandlers.InsightHandler
	users    *httpHandlers.UserHandler
	auth     *httpHandlers.AuthHandler
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.WithRequestID(values.RequestID).LogHTTPRequest(
				values.Method,
				values.URI,
				values.UserAgent,
				values.RemoteIP,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
				values.Error,
			)
			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(float64(s.config.Security.RateLimitRequests) / s.rateWindow().Seconds()),
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: s.rateWindow(),
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, ports.ErrorResponse{Message: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, ports.ErrorResponse{Message: "rate limit exceeded"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	// Timeout middleware
	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout:      s.config.Server.RequestTimeout,
			ErrorMessage: `{"message":"request timed out"}`,
		}))
	}
}

func (s *Server) rateWindow() time.Duration {
	if s.config.Security.RateLimitWindow <= 0 {
		return time.Minute
	}
	return s.config.Security.RateLimitWindow
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h routeHandlers, authService ports.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	api := s.echo.Group("", s.identityMiddleware(authService))

	// Identity stand-in
	api.POST("/auth/token", h.auth.IssueToken)

	// Users
	api.POST("/users", h.users.CreateUser)
	api.GET("/users", h.users.ListUsers)
	api.GET("/users/:id", h.users.GetUser)
	api.DELETE("/users/:id", h.users.DeleteUser)

	// Todos
	api.POST("/todos", h.todos.CreateTodo)
	api.GET("/todos", h.todos.ListTodos)
	api.GET("/todos/stats", h.insights.Stats)
	api.GET("/todos/:id", h.todos.GetTodo)
	api.PUT("/todos/:id", h.todos.UpdateTodo)
	api.DELETE("/todos/:id", h.todos.DeleteTodo)
	api.GET("/categories", h.todos.Categories)

	// Derived views
	api.GET("/analytics", h.insights.Analytics)
	api.GET("/history", h.insights.History)
	api.GET("/history/:date", h.insights.DayHistory)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	requestsTotal := s.metrics.RequestsTotal
	requestDuration := s.metrics.RequestDuration

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if s.db == nil {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"driver": s.config.Database.Driver,
		}
	} else if err := s.db.HealthCheck(c.Request().Context()); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	// Check if server is ready to accept requests
	if s.db != nil {
		if err := s.db.HealthCheck(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "database_not_ready",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ServeHTTP lets the server be driven directly by an http.Handler caller
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.Server.IdleTimeout

	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as {"message": ...} and logs 5xx
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case ports.ErrorResponse:
				msg = m
			case string:
				msg = ports.ErrorResponse{Message: m}
			default:
				msg = ports.ErrorResponse{Message: http.StatusText(code)}
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else {
			msg = ports.ErrorResponse{Message: http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
