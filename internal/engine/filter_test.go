package engine

import (
	"errors"
	"testing"

	"taskcycle/internal/model"
)

func TestFilterUnassignedAndDueCarveOut(t *testing.T) {
	tasks := []model.Task{
		{ID: "unassigned", Title: "x"},
		{ID: "overdue", Title: "x", DueDate: "2024-03-18"},
		{ID: "due-today", Title: "x", DueDate: "2024-03-20"},
		{ID: "due-tomorrow", Title: "x", DueDate: "2024-03-21"},
		{ID: "future", Title: "x", DueDate: "2024-06-01"},
	}
	views, err := classifier().Filter(tasks, SelectorUnassignedAndDue, today)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	ids := idsOf(views)
	if len(ids) != 3 {
		t.Fatalf("expected 3 tasks, got %v", ids)
	}
	for _, id := range ids {
		if id == "due-tomorrow" {
			t.Fatalf("due-tomorrow leaked into unassigned_and_due: %v", ids)
		}
	}
}

func TestFilterSortOrder(t *testing.T) {
	tasks := []model.Task{
		{ID: "n1", Title: "x"},
		{ID: "t1", Title: "x", DueDate: "2024-03-20"},
		{ID: "o2", Title: "x", DueDate: "2024-03-19"},
		{ID: "o1", Title: "x", DueDate: "2024-03-10"},
		{ID: "w1", Title: "x", DueDate: "2024-03-22"},
		{ID: "n2", Title: "x"},
	}
	views, err := classifier().Filter(tasks, SelectorAll, today)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	want := []string{"o1", "o2", "t1", "n2", "n1", "w1"}
	got := idsOf(views)
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v want %v", i, got, want)
		}
	}
}

func TestFilterDeduplicatesIDs(t *testing.T) {
	tasks := []model.Task{
		{ID: "dup", Title: "first", DueDate: "2024-03-20"},
		{ID: "dup", Title: "second", DueDate: "2024-03-20"},
	}
	views, err := classifier().Filter(tasks, SelectorAll, today)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(views) != 1 || views[0].Task.Title != "first" {
		t.Fatalf("expected first occurrence only, got %+v", views)
	}
}

func TestFilterExcludesCompletedButKeepsVirtualPending(t *testing.T) {
	tasks := []model.Task{
		{ID: "done-today", Title: "x", IsComplete: true, CompletedAt: completedAt(today)},
		{ID: "done-earlier", Title: "x", IsComplete: true, CompletedAt: completedAt(today.AddDays(-4))},
		{
			ID:          "resurfaced",
			Title:       "x",
			DueDate:     today.AddDays(-3).String(),
			IsComplete:  true,
			CompletedAt: completedAt(today.AddDays(-3)),
			Recurrence:  &model.Rule{Type: model.RecurrenceDaily, Interval: 1},
		},
	}
	views, err := classifier().Filter(tasks, SelectorAll, today)
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if len(views) != 1 || views[0].Task.ID != "resurfaced" {
		t.Fatalf("expected only the virtual-pending task, got %v", idsOf(views))
	}
	if !views[0].VirtualPending || views[0].State != StateOverdue {
		t.Fatalf("resurfaced task misclassified: %+v", views[0].Classification)
	}
}

func TestFilterWeekAndMonthSelectors(t *testing.T) {
	tasks := []model.Task{
		{ID: "overdue", Title: "x", DueDate: "2024-03-01"},
		{ID: "today", Title: "x", DueDate: "2024-03-20"},
		{ID: "tomorrow", Title: "x", DueDate: "2024-03-21"},
		{ID: "week", Title: "x", DueDate: "2024-03-23"},
		{ID: "month", Title: "x", DueDate: "2024-03-28"},
		{ID: "future", Title: "x", DueDate: "2024-04-02"},
		{ID: "unassigned", Title: "x"},
	}
	week, err := classifier().Filter(tasks, SelectorWeek, today)
	if err != nil {
		t.Fatalf("week filter failed: %v", err)
	}
	if got := idsOf(week); len(got) != 4 {
		t.Fatalf("week selector: got %v", got)
	}
	month, err := classifier().Filter(tasks, SelectorMonth, today)
	if err != nil {
		t.Fatalf("month filter failed: %v", err)
	}
	if got := idsOf(month); len(got) != 5 {
		t.Fatalf("month selector: got %v", got)
	}
	day, err := classifier().Filter(tasks, SelectorToday, today)
	if err != nil {
		t.Fatalf("today filter failed: %v", err)
	}
	if got := idsOf(day); len(got) != 2 {
		t.Fatalf("today selector: got %v", got)
	}
}

func TestFilterRejectsUnknownSelector(t *testing.T) {
	if _, err := classifier().Filter(nil, Selector("someday"), today); !errors.Is(err, ErrUnknownSelector) {
		t.Fatalf("expected ErrUnknownSelector, got %v", err)
	}
}

func TestCompletedTodayBucket(t *testing.T) {
	tasks := []model.Task{
		{ID: "done-today", Title: "x", IsComplete: true, CompletedAt: completedAt(today)},
		{ID: "done-earlier", Title: "x", IsComplete: true, CompletedAt: completedAt(today.AddDays(-1))},
		{ID: "pending", Title: "x", DueDate: "2024-03-20"},
		{
			// Recurring, completed today, successor overdue: the virtual
			// pending override wins over the completed-today bucket.
			ID:                 "resurfaced",
			Title:              "x",
			IsComplete:         true,
			CompletedAt:        completedAt(today),
			DueDate:            today.AddDays(-7).String(),
			Recurrence:         &model.Rule{Type: model.RecurrenceDaily, Interval: 1},
			NextOccurrenceDate: today.AddDays(-6).String(),
		},
	}
	bucket := classifier().CompletedToday(tasks, today)
	if len(bucket) != 1 || bucket[0].Task.ID != "done-today" {
		t.Fatalf("completed-today bucket wrong: %v", idsOf(bucket))
	}
}

func idsOf(views []View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Task.ID)
	}
	return out
}
