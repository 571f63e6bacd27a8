package services

import (
	"testing"
	"time"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func completedTodo(id int64, created, completed time.Time) *entities.Todo {
	return &entities.Todo{ID: id, Text: "t", CreatedAt: created, Completed: true, CompletedAt: &completed}
}

func pendingTodo(id int64, created time.Time) *entities.Todo {
	return &entities.Todo{ID: id, Text: "t", CreatedAt: created}
}

func TestHistoryForDaySameDayCompletion(t *testing.T) {
	todos := []*entities.Todo{
		completedTodo(1, at(2024, 5, 10, 8), at(2024, 5, 10, 17)),
	}

	history := HistoryForDay(todos, at(2024, 5, 10, 0), time.UTC)

	if len(history.Todos) != 1 {
		t.Fatalf("entries: got %d, want 1", len(history.Todos))
	}
	if history.Todos[0].ActivityType != ports.ActivityCreatedAndCompleted {
		t.Errorf("activity: got %q, want created_and_completed", history.Todos[0].ActivityType)
	}
	want := ports.HistorySummary{TotalActivities: 1, Created: 1, Completed: 1}
	if history.Summary != want {
		t.Errorf("summary: got %+v, want %+v", history.Summary, want)
	}
	if history.Date != "2024-05-10" {
		t.Errorf("date: got %q", history.Date)
	}
}

func TestHistoryForDayPartitions(t *testing.T) {
	todos := []*entities.Todo{
		pendingTodo(1, at(2024, 5, 10, 15)),                             // created that day
		completedTodo(2, at(2024, 5, 8, 9), at(2024, 5, 10, 11)),        // completed that day
		completedTodo(3, at(2024, 5, 10, 7), at(2024, 5, 10, 8)),        // both
		completedTodo(4, at(2024, 5, 9, 7), at(2024, 5, 11, 8)),         // neither
		completedTodo(5, at(2024, 5, 10, 23), at(2024, 5, 12, 1)),       // created only
		pendingTodo(6, time.Date(2024, 5, 10, 23, 59, 59, 0, time.UTC)), // last second of the day
	}

	history := HistoryForDay(todos, at(2024, 5, 10, 0), time.UTC)

	wantOrder := []struct {
		id       int64
		activity ports.ActivityType
	}{
		{2, ports.ActivityCompleted},
		{3, ports.ActivityCreatedAndCompleted},
		{1, ports.ActivityCreated},
		{5, ports.ActivityCreated},
		{6, ports.ActivityCreated},
	}

	if len(history.Todos) != len(wantOrder) {
		t.Fatalf("entries: got %d, want %d", len(history.Todos), len(wantOrder))
	}
	for i, want := range wantOrder {
		got := history.Todos[i]
		if got.ID != want.id || got.ActivityType != want.activity {
			t.Errorf("entry %d: got (%d, %s), want (%d, %s)", i, got.ID, got.ActivityType, want.id, want.activity)
		}
	}

	want := ports.HistorySummary{TotalActivities: 5, Created: 4, Completed: 2}
	if history.Summary != want {
		t.Errorf("summary: got %+v, want %+v", history.Summary, want)
	}
}

func TestHistoryForDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:00 UTC on the 9th is 01:00 on the 10th at UTC+3
	todos := []*entities.Todo{pendingTodo(1, at(2024, 5, 9, 22))}

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, loc)
	if got := HistoryForDay(todos, day, loc); got.Summary.Created != 1 {
		t.Errorf("UTC+3: created got %d, want 1", got.Summary.Created)
	}
	if got := HistoryForDay(todos, at(2024, 5, 10, 0), time.UTC); got.Summary.Created != 0 {
		t.Errorf("UTC: created got %d, want 0", got.Summary.Created)
	}
}

func TestHistoryForDayEmpty(t *testing.T) {
	history := HistoryForDay(nil, at(2024, 5, 10, 0), time.UTC)

	if history.Todos == nil || len(history.Todos) != 0 {
		t.Errorf("entries should be an empty list, got %v", history.Todos)
	}
	if history.Summary != (ports.HistorySummary{}) {
		t.Errorf("summary should be zero, got %+v", history.Summary)
	}
}

func TestGroupedHistory(t *testing.T) {
	todos := []*entities.Todo{
		completedTodo(1, at(2024, 5, 10, 8), at(2024, 5, 12, 9)),
		completedTodo(2, at(2024, 5, 12, 7), at(2024, 5, 12, 10)),
		pendingTodo(3, at(2024, 5, 11, 12)),
		pendingTodo(4, at(2024, 5, 10, 6)),
	}

	page := GroupedHistory(todos, 30, time.UTC)

	if page.TotalDays != 3 || len(page.History) != 3 {
		t.Fatalf("days: got total=%d len=%d, want 3", page.TotalDays, len(page.History))
	}

	wantDates := []string{"2024-05-12", "2024-05-11", "2024-05-10"}
	for i, date := range wantDates {
		if page.History[i].Date != date {
			t.Errorf("day %d: got %s, want %s", i, page.History[i].Date, date)
		}
	}

	latest := page.History[0]
	if latest.CreatedCount != 1 || latest.CompletedCount != 2 {
		t.Errorf("2024-05-12 counts: created=%d completed=%d, want 1/2", latest.CreatedCount, latest.CompletedCount)
	}
	if len(latest.Todos) != 2 {
		t.Fatalf("2024-05-12 entries: got %d, want 2", len(latest.Todos))
	}
	// ascending by created_at
	if latest.Todos[0].ID != 1 || latest.Todos[0].ActivityType != ports.ActivityCompleted {
		t.Errorf("first entry: got (%d, %s)", latest.Todos[0].ID, latest.Todos[0].ActivityType)
	}
	if latest.Todos[1].ID != 2 || latest.Todos[1].ActivityType != ports.ActivityCreatedAndCompleted {
		t.Errorf("second entry: got (%d, %s)", latest.Todos[1].ID, latest.Todos[1].ActivityType)
	}

	oldest := page.History[2]
	if oldest.CreatedCount != 2 || oldest.CompletedCount != 0 {
		t.Errorf("2024-05-10 counts: created=%d completed=%d, want 2/0", oldest.CreatedCount, oldest.CompletedCount)
	}
	if oldest.Todos[0].ID != 4 || oldest.Todos[1].ID != 1 {
		t.Errorf("2024-05-10 order: got %d, %d", oldest.Todos[0].ID, oldest.Todos[1].ID)
	}
	for _, entry := range oldest.Todos {
		if entry.ActivityType != ports.ActivityCreated {
			t.Errorf("2024-05-10 todo %d: got %s, want created", entry.ID, entry.ActivityType)
		}
	}
}

func TestGroupedHistoryLimit(t *testing.T) {
	var todos []*entities.Todo
	for i := 1; i <= 10; i++ {
		todos = append(todos, pendingTodo(int64(i), at(2024, 5, i, 12)))
	}

	page := GroupedHistory(todos, 3, time.UTC)

	if page.TotalDays != 10 || len(page.History) != 3 {
		t.Fatalf("days: got total=%d len=%d, want total=10 len=3", page.TotalDays, len(page.History))
	}
	if page.History[0].Date != "2024-05-10" || page.History[2].Date != "2024-05-08" {
		t.Errorf("limited days: got %s..%s", page.History[0].Date, page.History[2].Date)
	}
}

func TestGroupedHistoryEmpty(t *testing.T) {
	page := GroupedHistory(nil, 30, time.UTC)
	if page.TotalDays != 0 || page.History == nil || len(page.History) != 0 {
		t.Errorf("empty history: got %+v", page)
	}
}
