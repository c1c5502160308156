package model

import (
	"errors"
	"fmt"

	"taskcycle/internal/dates"
)

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

func (t RecurrenceType) IsValid() bool {
	switch t {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

var ErrInvalidRecurrenceType = errors.New("model: invalid recurrence type")

// Rule describes how a task repeats: every Interval days, weeks, months, or
// years. An Interval below 1 is treated as 1 rather than rejected, so a rule
// that decodes oddly still schedules something sensible.
type Rule struct {
	Type     RecurrenceType
	Interval int
}

func (r Rule) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, r.Type)
	}
	return nil
}

func (r Rule) step() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Next computes the occurrence after anchor. It is pure: the same inputs
// always produce the same output, and the result is strictly later than
// anchor for every valid rule. Monthly and yearly steps use calendar
// arithmetic with month-end clamping, never a fixed day count.
func (r Rule) Next(anchor dates.Day) (dates.Day, error) {
	switch r.Type {
	case RecurrenceDaily:
		return anchor.AddDays(r.step()), nil
	case RecurrenceWeekly:
		return anchor.AddDays(r.step() * 7), nil
	case RecurrenceMonthly:
		return anchor.AddMonths(r.step()), nil
	case RecurrenceYearly:
		return anchor.AddYears(r.step()), nil
	default:
		return dates.Day{}, fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, r.Type)
	}
}
