package model

import (
	"errors"
	"strings"
	"time"

	"taskcycle/internal/dates"
)

// Task is one schedulable unit of work as the backend stores it. Dates are
// carried as calendar-day strings exactly as they appear on the wire; parsing
// happens at the point of use so a malformed date degrades one task instead
// of failing a whole list load.
type Task struct {
	ID          string
	Title       string
	Description string

	// DueDate is an ISO calendar day; empty means unscheduled.
	DueDate string

	IsComplete  bool
	CompletedAt *time.Time

	// Recurrence is nil for one-off tasks.
	Recurrence *Rule

	// NextOccurrenceDate caches the successor day once a completed recurring
	// task has been advanced, so later classification needs no recompute and
	// no round-trip.
	NextOccurrenceDate string

	CreatedAt time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
	}
	if t.Recurrence == nil && t.NextOccurrenceDate != "" {
		return errors.New("model: next occurrence set on non-recurring task")
	}
	if t.IsComplete && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is complete")
	}
	return nil
}

// IsRecurring reports whether the task carries a usable recurrence rule.
// A rule with an unknown type counts as non-recurring, per the degradation
// contract: unknown kinds must never crash a caller.
func (t Task) IsRecurring() bool {
	return t.Recurrence != nil && t.Recurrence.Type.IsValid()
}

// CompletedOn reports whether the last completion fell on the given day.
func (t Task) CompletedOn(day dates.Day) bool {
	if t.CompletedAt == nil {
		return false
	}
	return dates.FromTime(*t.CompletedAt).Equal(day)
}
