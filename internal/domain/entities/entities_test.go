package entities

import (
	"errors"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		raw     string
		want    Priority
		wantErr bool
	}{
		{"", PriorityMedium, false},
		{"High", PriorityHigh, false},
		{"Medium", PriorityMedium, false},
		{"Low", PriorityLow, false},
		{"high", "", true},
		{"Urgent", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePriority(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		var verr *ValidationError
		if tt.wantErr && !errors.As(err, &verr) {
			t.Errorf("ParsePriority(%q) error is not a ValidationError: %T", tt.raw, err)
		}
	}
}

func TestParseRecurrence(t *testing.T) {
	for _, raw := range []string{"none", "daily", "weekly", "monthly"} {
		if got, err := ParseRecurrence(raw); err != nil || string(got) != raw {
			t.Errorf("ParseRecurrence(%q) = %q, %v", raw, got, err)
		}
	}
	if got, _ := ParseRecurrence(""); got != RecurrenceNone {
		t.Errorf("empty recurrence: got %q, want none", got)
	}
	if _, err := ParseRecurrence("yearly"); err == nil {
		t.Error("expected error for yearly")
	}
}

func TestMarkCompleted(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	todo := &Todo{Text: "water plants"}

	if !todo.MarkCompleted(true, now) {
		t.Fatal("false->true should report a change")
	}
	if !todo.Completed || todo.CompletedAt == nil || !todo.CompletedAt.Equal(now) {
		t.Fatalf("completed_at not set: %+v", todo)
	}

	if todo.MarkCompleted(true, now.Add(time.Hour)) {
		t.Error("true->true should not report a change")
	}
	if !todo.CompletedAt.Equal(now) {
		t.Error("completed_at changed on a no-op")
	}

	if !todo.MarkCompleted(false, now) {
		t.Fatal("true->false should report a change")
	}
	if todo.Completed || todo.CompletedAt != nil {
		t.Errorf("completion not cleared: %+v", todo)
	}
}

func TestNextOccurrence(t *testing.T) {
	due := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)
	src := &Todo{
		ID:         7,
		Text:       "pay rent",
		Category:   "Home",
		Priority:   PriorityHigh,
		Recurrence: RecurrenceMonthly,
		DueAt:      &due,
		Completed:  true,
	}

	next := src.NextOccurrence(now, time.UTC)
	if next == nil {
		t.Fatal("expected a next occurrence")
	}
	if next.ParentID == nil || *next.ParentID != 7 {
		t.Errorf("parent id: got %v, want 7", next.ParentID)
	}
	if next.Completed || next.CompletedAt != nil {
		t.Error("next occurrence must start incomplete")
	}
	if next.Text != src.Text || next.Category != src.Category || next.Priority != src.Priority || next.Recurrence != src.Recurrence {
		t.Errorf("fields not copied: %+v", next)
	}
	want := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	if next.DueAt == nil || !next.DueAt.Equal(want) {
		t.Errorf("due: got %v, want %s", next.DueAt, want)
	}

	src.Recurrence = RecurrenceNone
	if src.NextOccurrence(now, time.UTC) != nil {
		t.Error("non-recurring todo must not produce an occurrence")
	}
}

func TestNextOccurrenceUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule Recurrence
		due  time.Time
		want time.Time
	}{
		{
			// 23:30 on Jan 30 in New York is already Jan 31 in UTC
			name: "monthly clamps in local month",
			rule: RecurrenceMonthly,
			due:  time.Date(2024, 1, 30, 23, 30, 0, 0, ny).UTC(),
			want: time.Date(2024, 2, 29, 23, 30, 0, 0, ny),
		},
		{
			name: "daily keeps wall clock across DST",
			rule: RecurrenceDaily,
			due:  time.Date(2024, 3, 9, 9, 0, 0, 0, ny).UTC(),
			want: time.Date(2024, 3, 10, 9, 0, 0, 0, ny),
		},
		{
			name: "weekly keeps wall clock across DST",
			rule: RecurrenceWeekly,
			due:  time.Date(2024, 3, 5, 8, 0, 0, 0, ny).UTC(),
			want: time.Date(2024, 3, 12, 8, 0, 0, 0, ny),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := tt.due
			src := &Todo{ID: 1, Text: "x", Recurrence: tt.rule, DueAt: &due}
			next := src.NextOccurrence(now, ny)
			if next == nil {
				t.Fatal("expected a next occurrence")
			}
			if next.DueAt == nil || !next.DueAt.Equal(tt.want) {
				t.Errorf("due: got %v, want %v", next.DueAt, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	valid := map[string]time.Time{
		"2024-03-01T10:15:00Z":       time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC),
		"2024-03-01T10:15:00+02:00":  time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC),
		"2024-03-01T10:15:00":        time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC),
		"2024-03-01T10:15:00.123456": time.Date(2024, 3, 1, 10, 15, 0, 123456000, time.UTC),
		"2024-03-01":                 time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range valid {
		got, err := ParseTimestamp("due_at", raw, time.UTC)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", raw, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %s, want %s", raw, got, want)
		}
	}

	for _, raw := range []string{"tomorrow", "2024-13-01", "01/03/2024"} {
		_, err := ParseTimestamp("due_at", raw, time.UTC)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != "due_at" {
			t.Errorf("ParseTimestamp(%q): expected due_at validation error, got %v", raw, err)
		}
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &StoreError{Op: "update todo", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("StoreError should unwrap to its cause")
	}
}
