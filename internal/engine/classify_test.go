package engine

import (
	"testing"
	"time"

	"taskcycle/internal/dates"
	"taskcycle/internal/model"
)

// Wednesday 2024-03-20; its week runs Sun 03-17 through Sat 03-23.
var today = dates.New(2024, time.March, 20)

func classifier() *Classifier {
	return NewClassifier(nil)
}

func completedAt(day dates.Day) *time.Time {
	t := day.Time().Add(10 * time.Hour)
	return &t
}

func TestClassifyPendingBuckets(t *testing.T) {
	cases := []struct {
		name string
		due  string
		want DueState
	}{
		{"no due date", "", StateUnassigned},
		{"yesterday", "2024-03-19", StateOverdue},
		{"long past", "2023-11-02", StateOverdue},
		{"today", "2024-03-20", StateDueToday},
		{"tomorrow", "2024-03-21", StateDueTomorrow},
		{"friday this week", "2024-03-22", StateDueThisWeek},
		{"saturday closes the week", "2024-03-23", StateDueThisWeek},
		{"sunday is next week", "2024-03-24", StateDueThisMonth},
		{"end of month", "2024-03-31", StateDueThisMonth},
		{"next month", "2024-04-01", StateFuture},
		{"unparsable due date", "soon", StateUnassigned},
	}
	for _, tc := range cases {
		task := model.Task{ID: "t", Title: "x", DueDate: tc.due}
		got := classifier().Classify(task, today)
		if got.State != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got.State, tc.want)
		}
		if got.VirtualPending {
			t.Fatalf("%s: pending task flagged virtual", tc.name)
		}
	}
}

func TestClassifyCompletedNonRecurring(t *testing.T) {
	sameDay := model.Task{ID: "t", IsComplete: true, CompletedAt: completedAt(today)}
	if got := classifier().Classify(sameDay, today); got.State != StateCompletedToday {
		t.Fatalf("completed today: got %s", got.State)
	}
	earlier := model.Task{ID: "t", IsComplete: true, CompletedAt: completedAt(today.AddDays(-2))}
	if got := classifier().Classify(earlier, today); got.State != StateCompletedEarlier {
		t.Fatalf("completed earlier: got %s", got.State)
	}
}

func TestClassifyVirtualPendingFromComputedNext(t *testing.T) {
	// Completed daily task due three days ago with no recorded successor:
	// the computed next occurrence (two days ago) is itself overdue.
	task := model.Task{
		ID:          "t",
		DueDate:     today.AddDays(-3).String(),
		IsComplete:  true,
		CompletedAt: completedAt(today.AddDays(-3)),
		Recurrence:  &model.Rule{Type: model.RecurrenceDaily, Interval: 1},
	}
	got := classifier().Classify(task, today)
	if got.State != StateOverdue || !got.VirtualPending {
		t.Fatalf("expected virtual-pending overdue, got %+v", got)
	}
	if want := today.AddDays(-2); !got.EffectiveDue.Equal(want) {
		t.Fatalf("effective next: got %v want %v", got.EffectiveDue, want)
	}
}

func TestClassifyVirtualPendingPrefersCachedNext(t *testing.T) {
	task := model.Task{
		ID:                 "t",
		DueDate:            "2024-03-01",
		IsComplete:         true,
		CompletedAt:        completedAt(dates.New(2024, time.March, 1)),
		Recurrence:         &model.Rule{Type: model.RecurrenceWeekly, Interval: 2},
		NextOccurrenceDate: "2024-03-15",
	}
	got := classifier().Classify(task, today)
	if got.State != StateOverdue || !got.VirtualPending {
		t.Fatalf("expected virtual-pending overdue, got %+v", got)
	}
	if !got.EffectiveDue.Equal(dates.New(2024, time.March, 15)) {
		t.Fatalf("expected cached next 2024-03-15, got %v", got.EffectiveDue)
	}
}

func TestClassifyCompletedRecurringWithFutureNextStaysCompleted(t *testing.T) {
	task := model.Task{
		ID:                 "t",
		DueDate:            today.String(),
		IsComplete:         true,
		CompletedAt:        completedAt(today),
		Recurrence:         &model.Rule{Type: model.RecurrenceDaily, Interval: 1},
		NextOccurrenceDate: today.AddDays(1).String(),
	}
	got := classifier().Classify(task, today)
	if got.State != StateCompletedToday || got.VirtualPending {
		t.Fatalf("future successor must not resurface the task, got %+v", got)
	}
}

func TestClassifyCompletedRecurringNextDueTodayIsNotVirtual(t *testing.T) {
	// Resurfacing is strictly "before today".
	task := model.Task{
		ID:                 "t",
		IsComplete:         true,
		CompletedAt:        completedAt(today.AddDays(-1)),
		DueDate:            today.AddDays(-1).String(),
		Recurrence:         &model.Rule{Type: model.RecurrenceDaily, Interval: 1},
		NextOccurrenceDate: today.String(),
	}
	got := classifier().Classify(task, today)
	if got.State != StateCompletedEarlier || got.VirtualPending {
		t.Fatalf("next due today must stay completed, got %+v", got)
	}
}

func TestClassifyUnknownRuleDegradesToNonRecurring(t *testing.T) {
	task := model.Task{
		ID:          "t",
		DueDate:     today.AddDays(-5).String(),
		IsComplete:  true,
		CompletedAt: completedAt(today.AddDays(-5)),
		Recurrence:  &model.Rule{Type: "hourly", Interval: 1},
	}
	got := classifier().Classify(task, today)
	if got.State != StateCompletedEarlier || got.VirtualPending {
		t.Fatalf("unknown rule must classify as plain completion, got %+v", got)
	}
}

func TestClassifyIsExhaustiveAndExclusive(t *testing.T) {
	tasks := []model.Task{
		{ID: "a"},
		{ID: "b", DueDate: "2024-03-19"},
		{ID: "c", DueDate: "2024-03-20"},
		{ID: "d", DueDate: "2024-03-21"},
		{ID: "e", DueDate: "2024-03-23"},
		{ID: "f", DueDate: "2024-03-29"},
		{ID: "g", DueDate: "2025-01-01"},
		{ID: "h", IsComplete: true, CompletedAt: completedAt(today)},
		{ID: "i", IsComplete: true, CompletedAt: completedAt(today.AddDays(-1))},
		{ID: "j", DueDate: "not a date"},
	}
	for _, task := range tasks {
		got := classifier().Classify(task, today)
		if !got.State.IsValid() {
			t.Fatalf("task %s produced invalid state %q", task.ID, got.State)
		}
	}
}
