package api

import (
	"math"
	"time"

	"taskcycle/internal/model"
)

// taskPayload is the backend's JSON shape for a task. Calendar days travel
// as plain "2006-01-02" strings; completion stamps are full timestamps.
type taskPayload struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description,omitempty"`
	DueDate            string       `json:"dueDate,omitempty"`
	IsComplete         bool         `json:"isComplete"`
	CompletedAt        *time.Time   `json:"completedAt,omitempty"`
	RecurrenceRule     *rulePayload `json:"recurrenceRule,omitempty"`
	NextOccurrenceDate string       `json:"nextOccurrenceDate,omitempty"`
	CreatedAt          time.Time    `json:"createdAt,omitempty"`
}

// rulePayload tolerates the loose intervals the backend has been seen to
// send: fractional or non-positive values normalize to 1.
type rulePayload struct {
	Type     string  `json:"type"`
	Interval float64 `json:"interval,omitempty"`
}

func fromTask(t model.Task) taskPayload {
	p := taskPayload{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		DueDate:            t.DueDate,
		IsComplete:         t.IsComplete,
		CompletedAt:        t.CompletedAt,
		NextOccurrenceDate: t.NextOccurrenceDate,
		CreatedAt:          t.CreatedAt,
	}
	if t.Recurrence != nil {
		p.RecurrenceRule = &rulePayload{
			Type:     string(t.Recurrence.Type),
			Interval: float64(t.Recurrence.Interval),
		}
	}
	return p
}

func (p taskPayload) toTask() model.Task {
	t := model.Task{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		DueDate:            p.DueDate,
		IsComplete:         p.IsComplete,
		CompletedAt:        p.CompletedAt,
		NextOccurrenceDate: p.NextOccurrenceDate,
		CreatedAt:          p.CreatedAt,
	}
	if p.RecurrenceRule != nil {
		t.Recurrence = &model.Rule{
			Type:     model.RecurrenceType(p.RecurrenceRule.Type),
			Interval: normalizeInterval(p.RecurrenceRule.Interval),
		}
	}
	return t
}

func normalizeInterval(v float64) int {
	if v < 1 || v != math.Trunc(v) {
		return 1
	}
	return int(v)
}
