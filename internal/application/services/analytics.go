package services

import (
	"math"
	"sort"
	"time"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

const activityWindowDays = 7

// Overview counts todos by state. Overdue todos are pending ones whose due
// date lies before now.
func Overview(todos []*entities.Todo, now time.Time) ports.Overview {
	var overview ports.Overview

	for _, todo := range todos {
		overview.Total++
		if todo.Completed {
			overview.Completed++
			continue
		}
		overview.Pending++
		if todo.IsOverdue(now) {
			overview.Overdue++
		}
	}

	overview.CompletionRate = percent(overview.Completed, overview.Total)
	return overview
}

// Summarize builds the full analytics report. Days are calendar days in loc.
// An empty collection yields a zeroed report with a full activity window.
func Summarize(todos []*entities.Todo, now time.Time, loc *time.Location) ports.AnalyticsReport {
	if loc == nil {
		loc = time.UTC
	}

	report := ports.AnalyticsReport{
		Overview:          Overview(todos, now),
		PriorityBreakdown: make(map[entities.Priority]int, len(entities.Priorities)),
		CategoryStats:     categoryStats(todos),
		TimeMetrics:       timeMetrics(todos),
		DailyActivity:     dailyActivity(todos, now, loc),
		GeneratedAt:       now,
	}

	for _, p := range entities.Priorities {
		report.PriorityBreakdown[p] = 0
	}
	for _, todo := range todos {
		if !todo.Completed {
			report.PriorityBreakdown[todo.Priority]++
		}
	}

	today := report.DailyActivity[len(report.DailyActivity)-1]
	report.Productivity = ports.Productivity{
		TodayCompleted:      today.Completed,
		TodayCreated:        today.Created,
		TodayCompletionRate: percent(today.Completed, today.Created),
	}

	return report
}

func categoryStats(todos []*entities.Todo) []ports.CategoryStat {
	byCategory := make(map[string]*ports.CategoryStat)

	for _, todo := range todos {
		stat, ok := byCategory[todo.Category]
		if !ok {
			stat = &ports.CategoryStat{Category: todo.Category}
			byCategory[todo.Category] = stat
		}
		stat.Total++
		if todo.Completed {
			stat.Completed++
		} else {
			stat.Pending++
		}
	}

	stats := make([]ports.CategoryStat, 0, len(byCategory))
	for _, stat := range byCategory {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })

	return stats
}

func timeMetrics(todos []*entities.Todo) ports.TimeMetrics {
	var (
		total time.Duration
		count int
	)

	for _, todo := range todos {
		if todo.CompletedAt == nil || todo.CreatedAt.IsZero() {
			continue
		}
		total += todo.CompletedAt.Sub(todo.CreatedAt)
		count++
	}

	if count == 0 {
		return ports.TimeMetrics{}
	}

	avgHours := total.Hours() / float64(count)
	return ports.TimeMetrics{
		AvgCompletionHours:  round1(avgHours),
		AvgCompletionDays:   round1(avgHours / 24),
		CompletedWithTiming: count,
	}
}

// dailyActivity returns one entry per day of the window ending today,
// oldest first.
func dailyActivity(todos []*entities.Todo, now time.Time, loc *time.Location) []ports.DailyActivity {
	today := entities.StartOfDay(now, loc)
	activity := make([]ports.DailyActivity, 0, activityWindowDays)

	for offset := activityWindowDays - 1; offset >= 0; offset-- {
		start := today.AddDate(0, 0, -offset)
		end := start.Add(24 * time.Hour)

		day := ports.DailyActivity{
			Date:    start.Format("2006-01-02"),
			DayName: start.Weekday().String(),
		}
		for _, todo := range todos {
			if within(todo.CreatedAt, start, end) {
				day.Created++
			}
			if todo.CompletedAt != nil && within(*todo.CompletedAt, start, end) {
				day.Completed++
			}
		}
		activity = append(activity, day)
	}

	return activity
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
