package engine

import (
	"errors"
	"fmt"
	"sort"

	"taskcycle/internal/dates"
	"taskcycle/internal/model"
)

// Selector names a filtered view of the task list.
type Selector string

const (
	SelectorUnassignedAndDue Selector = "unassigned_and_due"
	SelectorToday            Selector = "today"
	SelectorWeek             Selector = "week"
	SelectorMonth            Selector = "month"
	SelectorAll              Selector = "all"
)

func (s Selector) IsValid() bool {
	switch s {
	case SelectorUnassignedAndDue, SelectorToday, SelectorWeek, SelectorMonth, SelectorAll:
		return true
	default:
		return false
	}
}

var ErrUnknownSelector = errors.New("engine: unknown filter selector")

// View pairs a task with its classification for rendering.
type View struct {
	Task model.Task
	Classification
}

// Filter returns the ordered, de-duplicated view of tasks for a selector.
// Completed tasks never appear here; a virtual-pending occurrence does,
// because classification has already rebucketed it as overdue. Order is
// Overdue, DueToday, Unassigned, then the rest, with ties broken by
// ascending due date and then descending id.
func (c *Classifier) Filter(tasks []model.Task, selector Selector, today dates.Day) ([]View, error) {
	if !selector.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSelector, selector)
	}

	seen := make(map[string]bool, len(tasks))
	out := make([]View, 0, len(tasks))
	for _, task := range tasks {
		if task.ID != "" && seen[task.ID] {
			continue
		}
		seen[task.ID] = true

		cls := c.Classify(task, today)
		if cls.State.IsCompleted() {
			continue
		}
		if selectorMatches(selector, cls.State) {
			out = append(out, View{Task: task, Classification: cls})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := stateRank(out[i].State), stateRank(out[j].State)
		if ri != rj {
			return ri < rj
		}
		if cmp := compareDue(out[i], out[j]); cmp != 0 {
			return cmp < 0
		}
		// Most recently created first; ids are opaque but stable.
		return out[i].Task.ID > out[j].Task.ID
	})
	return out, nil
}

// CompletedToday returns tasks actually finished today: completed records
// whose next occurrence, if any, has not itself lapsed. They live in their
// own bucket, never in the filtered active list.
func (c *Classifier) CompletedToday(tasks []model.Task, today dates.Day) []View {
	out := make([]View, 0)
	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.ID != "" && seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		cls := c.Classify(task, today)
		if cls.State == StateCompletedToday {
			out = append(out, View{Task: task, Classification: cls})
		}
	}
	return out
}

func selectorMatches(selector Selector, state DueState) bool {
	switch selector {
	case SelectorAll:
		return true
	case SelectorUnassignedAndDue:
		// Explicit carve-out: a task due tomorrow never qualifies here.
		if state == StateDueTomorrow {
			return false
		}
		return state == StateUnassigned || state == StateDueToday || state == StateOverdue
	case SelectorToday:
		return state == StateOverdue || state == StateDueToday
	case SelectorWeek:
		return state == StateOverdue || state == StateDueToday ||
			state == StateDueTomorrow || state == StateDueThisWeek
	case SelectorMonth:
		return state == StateOverdue || state == StateDueToday ||
			state == StateDueTomorrow || state == StateDueThisWeek ||
			state == StateDueThisMonth
	default:
		return false
	}
}

func stateRank(state DueState) int {
	switch state {
	case StateOverdue:
		return 0
	case StateDueToday:
		return 1
	case StateUnassigned:
		return 2
	default:
		return 3
	}
}

// compareDue orders by effective due day, dateless tasks last.
func compareDue(a, b View) int {
	switch {
	case a.EffectiveDue.IsZero() && b.EffectiveDue.IsZero():
		return 0
	case a.EffectiveDue.IsZero():
		return 1
	case b.EffectiveDue.IsZero():
		return -1
	default:
		return dates.Compare(a.EffectiveDue, b.EffectiveDue)
	}
}
