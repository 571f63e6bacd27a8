package services

import (
	"sort"
	"time"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

// HistoryForDay collects the todos created or completed on the given day.
// A todo that was both created and completed that day yields a single
// created_and_completed entry, so Summary.TotalActivities can be lower than
// Created+Completed.
func HistoryForDay(todos []*entities.Todo, day time.Time, loc *time.Location) ports.DayHistory {
	key := entities.DayKey(day, loc)

	history := ports.DayHistory{
		Date:      key,
		Created:   []*entities.Todo{},
		Completed: []*entities.Todo{},
		Todos:     []ports.ActivityEntry{},
	}

	for _, todo := range todos {
		created := entities.DayKey(todo.CreatedAt, loc) == key
		completed := todo.CompletedAt != nil && entities.DayKey(*todo.CompletedAt, loc) == key

		if created {
			history.Created = append(history.Created, todo)
		}
		if completed {
			history.Completed = append(history.Completed, todo)
		}
		if activity, ok := activityOf(created, completed); ok {
			history.Todos = append(history.Todos, ports.ActivityEntry{Todo: todo, ActivityType: activity})
		}
	}

	sortEntries(history.Todos)
	sortTodos(history.Created)
	sortTodos(history.Completed)

	history.Summary = ports.HistorySummary{
		TotalActivities: len(history.Todos),
		Created:         len(history.Created),
		Completed:       len(history.Completed),
	}

	return history
}

// GroupedHistory buckets todos by activity day, most recent day first, and
// keeps at most limit days. A todo created and completed on different days
// shows up under both days.
func GroupedHistory(todos []*entities.Todo, limit int, loc *time.Location) ports.HistoryPage {
	type bucket struct {
		summary ports.DaySummary
		index   map[int64]int
	}

	buckets := make(map[string]*bucket)
	dayOf := func(key string) *bucket {
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				summary: ports.DaySummary{Date: key, Todos: []ports.ActivityEntry{}},
				index:   make(map[int64]int),
			}
			buckets[key] = b
		}
		return b
	}

	record := func(key string, todo *entities.Todo, activity ports.ActivityType) {
		b := dayOf(key)
		if i, ok := b.index[todo.ID]; ok {
			b.summary.Todos[i].ActivityType = ports.ActivityCreatedAndCompleted
			return
		}
		b.index[todo.ID] = len(b.summary.Todos)
		b.summary.Todos = append(b.summary.Todos, ports.ActivityEntry{Todo: todo, ActivityType: activity})
	}

	for _, todo := range todos {
		createdKey := entities.DayKey(todo.CreatedAt, loc)
		dayOf(createdKey).summary.CreatedCount++
		record(createdKey, todo, ports.ActivityCreated)

		if todo.CompletedAt != nil {
			completedKey := entities.DayKey(*todo.CompletedAt, loc)
			dayOf(completedKey).summary.CompletedCount++
			record(completedKey, todo, ports.ActivityCompleted)
		}
	}

	days := make([]string, 0, len(buckets))
	for key := range buckets {
		days = append(days, key)
	}
	// YYYY-MM-DD sorts chronologically as a string
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	// total_days counts every active day, not just the returned page
	page := ports.HistoryPage{TotalDays: len(days)}
	if limit > 0 && len(days) > limit {
		days = days[:limit]
	}

	page.History = make([]ports.DaySummary, 0, len(days))
	for _, key := range days {
		summary := buckets[key].summary
		sortEntries(summary.Todos)
		page.History = append(page.History, summary)
	}

	return page
}

func activityOf(created, completed bool) (ports.ActivityType, bool) {
	switch {
	case created && completed:
		return ports.ActivityCreatedAndCompleted, true
	case created:
		return ports.ActivityCreated, true
	case completed:
		return ports.ActivityCompleted, true
	}
	return "", false
}

func sortEntries(entries []ports.ActivityEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return createdBefore(entries[i].Todo, entries[j].Todo)
	})
}

func sortTodos(todos []*entities.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		return createdBefore(todos[i], todos[j])
	})
}

func createdBefore(a, b *entities.Todo) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
