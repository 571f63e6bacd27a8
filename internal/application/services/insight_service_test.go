package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskmaster/todos/internal/adapters/repository"
	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/infrastructure/logger"
	"github.com/taskmaster/todos/internal/ports"
)

func TestInsightServiceViews(t *testing.T) {
	store := repository.NewMemoryStore()
	todos := newTestTodoService(t, store)
	insights := NewInsightService(store, time.UTC, 30, logger.NewNop())
	insights.now = func() time.Time { return testNow }
	ctx := context.Background()

	first := mustCreate(t, todos, ports.CreateTodoRequest{Text: "laundry", Recurrence: "weekly", DueAt: strPtr("2024-03-15")})
	mustCreate(t, todos, ports.CreateTodoRequest{Text: "groceries", Category: "Shopping"})
	if _, err := todos.SetCompletion(ctx, ports.AllOwners(), first.ID, true); err != nil {
		t.Fatalf("SetCompletion failed: %v", err)
	}

	stats, err := insights.Stats(ctx, ports.AllOwners())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	// the completed laundry todo, its next occurrence and groceries
	if stats.Total != 3 || stats.Completed != 1 || stats.Pending != 2 {
		t.Errorf("stats: got %+v", stats)
	}

	day, err := insights.DayHistory(ctx, ports.AllOwners(), "2024-03-15")
	if err != nil {
		t.Fatalf("DayHistory failed: %v", err)
	}
	if day.Date != "2024-03-15" {
		t.Errorf("date: got %q", day.Date)
	}
	if day.Summary.Created != 3 || day.Summary.Completed != 1 || day.Summary.TotalActivities != 3 {
		t.Errorf("day summary: got %+v", day.Summary)
	}

	page, err := insights.History(ctx, ports.AllOwners(), 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if page.TotalDays != 1 || page.History[0].CreatedCount != 3 {
		t.Errorf("history: got %+v", page)
	}

	report, err := insights.Analytics(ctx, ports.AllOwners())
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if report.Productivity.TodayCreated != 3 || report.Productivity.TodayCompleted != 1 {
		t.Errorf("productivity: got %+v", report.Productivity)
	}
}

func TestInsightServiceRejectsMalformedDay(t *testing.T) {
	insights := NewInsightService(repository.NewMemoryStore(), time.UTC, 30, logger.NewNop())

	for _, raw := range []string{"2024-13-01", "15-03-2024", "yesterday", ""} {
		_, err := insights.DayHistory(context.Background(), ports.AllOwners(), raw)
		var verr *entities.ValidationError
		if !errors.As(err, &verr) || verr.Field != "date" {
			t.Errorf("DayHistory(%q): expected date ValidationError, got %v", raw, err)
		}
	}
}
