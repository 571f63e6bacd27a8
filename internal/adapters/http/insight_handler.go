package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

// InsightHandler serves the stats, analytics and history views
type InsightHandler struct {
	insightService ports.InsightService
	owners         OwnerResolver
	logger         *logger.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightService ports.InsightService, owners OwnerResolver, logger *logger.Logger) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		owners:         owners,
		logger:         logger,
	}
}

// Stats godoc
// @Summary Todo statistics
// @Tags insights
// @Produce json
// @Param owner_id query string false "Owner"
// @Success 200 {object} ports.Overview
// @Router /todos/stats [get]
func (h *InsightHandler) Stats(c echo.Context) error {
	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	stats, err := h.insightService.Stats(c.Request().Context(), scope)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, stats)
}

// Analytics godoc
// @Summary Analytics report
// @Description Overview, priority and category breakdowns, completion timing and the last 7 days of activity
// @Tags insights
// @Produce json
// @Param owner_id query string false "Owner"
// @Success 200 {object} ports.AnalyticsReport
// @Router /analytics [get]
func (h *InsightHandler) Analytics(c echo.Context) error {
	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	report, err := h.insightService.Analytics(c.Request().Context(), scope)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, report)
}

// DayHistory godoc
// @Summary Activity of one day
// @Tags insights
// @Produce json
// @Param date path string true "Day as YYYY-MM-DD"
// @Success 200 {object} ports.DayHistory
// @Failure 400 {object} ports.ErrorResponse
// @Router /history/{date} [get]
func (h *InsightHandler) DayHistory(c echo.Context) error {
	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	history, err := h.insightService.DayHistory(c.Request().Context(), scope, c.Param("date"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, history)
}

// History godoc
// @Summary Activity grouped by day
// @Description Most recent day first
// @Tags insights
// @Produce json
// @Param limit query int false "Number of days (default 30)"
// @Success 200 {object} ports.HistoryPage
// @Failure 400 {object} ports.ErrorResponse
// @Router /history [get]
func (h *InsightHandler) History(c echo.Context) error {
	scope, err := h.owners.Scope(c)
	if err != nil {
		return toHTTPError(err)
	}

	limit, err := parseLimit(c)
	if err != nil {
		return toHTTPError(err)
	}

	page, err := h.insightService.History(c.Request().Context(), scope, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, page)
}
