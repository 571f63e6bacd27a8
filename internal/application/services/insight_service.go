package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

// InsightService serves the read-only views. Each call loads one snapshot of
// the scoped todos and hands it to the pure aggregators.
type InsightService struct {
	store        ports.Store
	logger       *logger.Logger
	location     *time.Location
	defaultLimit int
	now          func() time.Time
}

// NewInsightService creates a new insight service
func NewInsightService(store ports.Store, loc *time.Location, defaultLimit int, logger *logger.Logger) *InsightService {
	if loc == nil {
		loc = time.UTC
	}
	if defaultLimit < 1 {
		defaultLimit = 30
	}
	return &InsightService{
		store:        store,
		logger:       logger.WithComponent("insight_service"),
		location:     loc,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// Stats returns the basic overview
func (s *InsightService) Stats(ctx context.Context, scope ports.Scope) (*ports.Overview, error) {
	todos, err := s.snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	overview := Overview(todos, s.now())
	return &overview, nil
}

// Analytics returns the full analytics report
func (s *InsightService) Analytics(ctx context.Context, scope ports.Scope) (*ports.AnalyticsReport, error) {
	todos, err := s.snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	report := Summarize(todos, s.now(), s.location)
	return &report, nil
}

// DayHistory returns the activity of a single YYYY-MM-DD day
func (s *InsightService) DayHistory(ctx context.Context, scope ports.Scope, day string) (*ports.DayHistory, error) {
	date, err := entities.ParseDay(day, s.location)
	if err != nil {
		return nil, err
	}

	todos, err := s.snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	history := HistoryForDay(todos, date, s.location)
	history.Date = day
	return &history, nil
}

// History returns the grouped activity history, most recent day first.
// A non-positive limit falls back to the configured default.
func (s *InsightService) History(ctx context.Context, scope ports.Scope, limit int) (*ports.HistoryPage, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}

	todos, err := s.snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}

	page := GroupedHistory(todos, limit, s.location)
	return &page, nil
}

func (s *InsightService) snapshot(ctx context.Context, scope ports.Scope) ([]*entities.Todo, error) {
	todos, err := s.store.Todos().List(ctx, scope, ports.TodoFilter{})
	if err != nil {
		s.logger.WithError(err).Error("Failed to load todos snapshot")
		return nil, fmt.Errorf("failed to load todos: %w", err)
	}
	return todos, nil
}
