// Package engine holds the due-state classifier, the filtered task views,
// and the completion lifecycle for recurring tasks. Classification and
// filtering are pure reads, safe to run on every render; only the lifecycle
// talks to the backend.
package engine

import (
	"log/slog"

	"taskcycle/internal/dates"
	"taskcycle/internal/model"
)

// DueState buckets a task's due date against today. Exactly one state
// applies to any (task, today) pair.
type DueState string

const (
	StateUnassigned       DueState = "unassigned"
	StateOverdue          DueState = "overdue"
	StateDueToday         DueState = "due_today"
	StateDueTomorrow      DueState = "due_tomorrow"
	StateDueThisWeek      DueState = "due_this_week"
	StateDueThisMonth     DueState = "due_this_month"
	StateFuture           DueState = "future"
	StateCompletedToday   DueState = "completed_today"
	StateCompletedEarlier DueState = "completed_earlier"
)

func (s DueState) IsValid() bool {
	switch s {
	case StateUnassigned, StateOverdue, StateDueToday, StateDueTomorrow,
		StateDueThisWeek, StateDueThisMonth, StateFuture,
		StateCompletedToday, StateCompletedEarlier:
		return true
	default:
		return false
	}
}

// IsCompleted reports whether the state belongs to the completed pair.
func (s DueState) IsCompleted() bool {
	return s == StateCompletedToday || s == StateCompletedEarlier
}

// Classification is the read-only verdict for one task. When VirtualPending
// is set the task's stored record is complete, but its computed next
// occurrence has itself slipped past today, so it is presented as an overdue
// pending task due on EffectiveDue. Classification never mutates the record.
type Classification struct {
	State          DueState
	VirtualPending bool

	// EffectiveDue is the day the task is treated as due: the parsed due
	// date for pending tasks, the effective next occurrence for
	// virtual-pending ones. Zero when the task has no usable date.
	EffectiveDue dates.Day
}

type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Classify buckets one task against today. States are priority ordered:
// Overdue > DueToday > DueTomorrow > Unassigned > DueThisWeek > DueThisMonth
// > Future, and the single highest-priority applicable state is returned.
func (c *Classifier) Classify(task model.Task, today dates.Day) Classification {
	if task.IsComplete {
		return c.classifyCompleted(task, today)
	}

	due, ok := c.dueDay(task)
	if !ok {
		return Classification{State: StateUnassigned}
	}

	switch {
	case due.Before(today):
		return Classification{State: StateOverdue, EffectiveDue: due}
	case due.Equal(today):
		return Classification{State: StateDueToday, EffectiveDue: due}
	case due.Equal(today.AddDays(1)):
		return Classification{State: StateDueTomorrow, EffectiveDue: due}
	case !due.After(dates.EndOfWeek(today)):
		return Classification{State: StateDueThisWeek, EffectiveDue: due}
	case dates.SameMonth(due, today):
		return Classification{State: StateDueThisMonth, EffectiveDue: due}
	default:
		return Classification{State: StateFuture, EffectiveDue: due}
	}
}

func (c *Classifier) classifyCompleted(task model.Task, today dates.Day) Classification {
	if task.IsRecurring() {
		if next, ok := c.EffectiveNext(task); ok && next.Before(today) {
			// The successor occurrence is already overdue: surface the
			// record as pending again without touching its stored state.
			return Classification{
				State:          StateOverdue,
				VirtualPending: true,
				EffectiveDue:   next,
			}
		}
	}
	if task.CompletedOn(today) {
		return Classification{State: StateCompletedToday}
	}
	return Classification{State: StateCompletedEarlier}
}

// EffectiveNext resolves the next occurrence day of a recurring task,
// preferring the cached NextOccurrenceDate over a fresh computation from the
// due date and rule.
func (c *Classifier) EffectiveNext(task model.Task) (dates.Day, bool) {
	if task.NextOccurrenceDate != "" {
		next, err := dates.Parse(task.NextOccurrenceDate)
		if err == nil {
			return next, true
		}
		c.logger.Warn("ignoring unparsable next occurrence date",
			"task", task.ID, "value", task.NextOccurrenceDate, "err", err)
	}
	if task.Recurrence == nil {
		return dates.Day{}, false
	}
	anchor, ok := c.dueDay(task)
	if !ok {
		return dates.Day{}, false
	}
	next, err := task.Recurrence.Next(anchor)
	if err != nil {
		c.logger.Warn("treating task as non-recurring",
			"task", task.ID, "err", err)
		return dates.Day{}, false
	}
	return next, true
}

func (c *Classifier) dueDay(task model.Task) (dates.Day, bool) {
	if task.DueDate == "" {
		return dates.Day{}, false
	}
	due, err := dates.Parse(task.DueDate)
	if err != nil {
		c.logger.Warn("treating task with unparsable due date as unassigned",
			"task", task.ID, "value", task.DueDate, "err", err)
		return dates.Day{}, false
	}
	return due, true
}
