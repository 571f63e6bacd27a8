package entities

import "time"

// NextDue computes the due date of the next occurrence of a recurring todo.
// It returns nil when there is no current due date or no recurrence.
func NextDue(current *time.Time, rule Recurrence) *time.Time {
	if current == nil {
		return nil
	}

	var next time.Time
	switch rule {
	case RecurrenceDaily:
		next = addDays(*current, 1)
	case RecurrenceWeekly:
		next = addDays(*current, 7)
	case RecurrenceMonthly:
		next = addMonthClamped(*current)
	default:
		return nil
	}
	return &next
}

// addDays moves by calendar days and keeps the wall-clock time.
func addDays(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d+days, hh, mm, ss, t.Nanosecond(), t.Location())
}

// addMonthClamped advances one month, clamping the day to the end of the
// target month (Jan 31 -> Feb 28/29).
func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	targetYear, targetMonth := y, m+1
	if targetMonth > time.December {
		targetMonth = time.January
		targetYear++
	}

	if last := daysIn(targetYear, targetMonth, t.Location()); d > last {
		d = last
	}
	return time.Date(targetYear, targetMonth, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// day 0 of the following month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
