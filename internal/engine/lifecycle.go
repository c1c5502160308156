package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"taskcycle/internal/api"
	"taskcycle/internal/dates"
	"taskcycle/internal/model"
)

var (
	// ErrCompletionInFlight guards the per-task mutual exclusion: a second
	// completion request for the same id must not be issued while one is
	// outstanding.
	ErrCompletionInFlight = errors.New("engine: completion already in flight")

	// ErrSuccessorExists rejects materializing a sibling occurrence when the
	// completed record already carries its successor in place. Exactly one
	// successor strategy may run per completion event.
	ErrSuccessorExists = errors.New("engine: successor occurrence already exists")

	ErrNotRecurring = errors.New("engine: task is not recurring")
)

// Outcome says how a completion settled.
type Outcome string

const (
	// OutcomeCompleted: the backend confirmed the completion.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAlreadyComplete: the backend (or the record itself) already had
	// the task complete; nothing changed and no second successor exists.
	OutcomeAlreadyComplete Outcome = "already_complete"
	// OutcomeCompletedUnsynced: the backend was unreachable after retries;
	// the optimistic record is held in the mirror for the reconciliation
	// pass and nothing was dropped.
	OutcomeCompletedUnsynced Outcome = "completed_unsynced"
)

// Result carries the settled record. Task is the authoritative backend copy
// when synced, otherwise the optimistic local one.
type Result struct {
	Task    model.Task
	Outcome Outcome
}

// Mirror is the client-side persisted copy of the task list. The lifecycle
// writes it only after the transition has settled.
type Mirror interface {
	Put(ctx context.Context, task model.Task, synced bool) error
}

// Lifecycle drives the completion transition of a task: mark complete,
// advance the recurring successor, reconcile with the backend's answer.
type Lifecycle struct {
	store      api.Store
	mirror     Mirror
	clock      dates.Clock
	classifier *Classifier
	logger     *slog.Logger
	newID      func() string

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewLifecycle(store api.Store, mirror Mirror, clock dates.Clock, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = dates.SystemClock()
	}
	return &Lifecycle{
		store:      store,
		mirror:     mirror,
		clock:      clock,
		classifier: NewClassifier(logger),
		logger:     logger,
		newID:      uuid.NewString,
		inFlight:   make(map[string]bool),
	}
}

// Classifier exposes the classifier the lifecycle anchors its decisions on,
// so callers render with the same instance.
func (l *Lifecycle) Classifier() *Classifier { return l.classifier }

// Complete marks the task complete and, for recurring tasks, stores the
// successor occurrence on the same record (nextOccurrenceDate). The call is
// idempotent: completing an already-complete task, or racing a backend that
// answers "already complete", settles as a no-op with exactly one successor
// in existence. Completing a virtual-pending occurrence updates the original
// record and chains the successor from the effective next date, never from
// the stale due date.
func (l *Lifecycle) Complete(ctx context.Context, task model.Task) (Result, error) {
	if !l.acquire(task.ID) {
		return Result{}, ErrCompletionInFlight
	}
	defer l.release(task.ID)

	today := l.clock.Today()
	cls := l.classifier.Classify(task, today)

	if task.IsComplete && !cls.VirtualPending {
		return Result{Task: task, Outcome: OutcomeAlreadyComplete}, nil
	}

	updated := task
	updated.IsComplete = true
	now := l.clock.Now()
	updated.CompletedAt = &now

	if task.IsRecurring() {
		next, err := task.Recurrence.Next(l.completionAnchor(task, cls, today))
		if err != nil {
			// Unknown rule kind: degrade to a plain completion.
			l.logger.Warn("completing without successor", "task", task.ID, "err", err)
		} else {
			updated.NextOccurrenceDate = next.String()
		}
	}

	saved, err := l.store.UpdateTask(ctx, updated)
	switch {
	case err == nil:
		l.mirrorPut(ctx, saved, true)
		return Result{Task: saved, Outcome: OutcomeCompleted}, nil
	case errors.Is(err, api.ErrAlreadyComplete):
		// The backend got an earlier attempt; its record already holds the
		// one successor. Success, not failure.
		l.mirrorPut(ctx, updated, true)
		return Result{Task: updated, Outcome: OutcomeAlreadyComplete}, nil
	default:
		l.logger.Warn("completion unsynced, keeping optimistic record",
			"task", task.ID, "err", err)
		l.mirrorPut(ctx, updated, false)
		return Result{Task: updated, Outcome: OutcomeCompletedUnsynced}, nil
	}
}

// MaterializeSuccessor is the sibling-record fallback: it creates a new
// pending Task for the next occurrence instead of advancing the completed
// record in place. It refuses to run when the in-place successor already
// exists, so both strategies can never fire for one completion event.
func (l *Lifecycle) MaterializeSuccessor(ctx context.Context, task model.Task) (model.Task, error) {
	if !task.IsRecurring() {
		return model.Task{}, ErrNotRecurring
	}
	if task.NextOccurrenceDate != "" {
		return model.Task{}, ErrSuccessorExists
	}

	today := l.clock.Today()
	cls := l.classifier.Classify(task, today)
	next, err := task.Recurrence.Next(l.completionAnchor(task, cls, today))
	if err != nil {
		return model.Task{}, err
	}

	rule := *task.Recurrence
	successor := model.Task{
		ID:          l.newID(),
		Title:       task.Title,
		Description: task.Description,
		DueDate:     next.String(),
		Recurrence:  &rule,
		CreatedAt:   l.clock.Now(),
	}
	created, err := l.store.CreateTask(ctx, successor)
	if err != nil {
		return model.Task{}, err
	}
	l.mirrorPut(ctx, created, true)
	return created, nil
}

// completionAnchor picks the day the successor chains from: the effective
// next date for a virtual-pending record, the due date otherwise, and today
// for a recurring task that never had a date.
func (l *Lifecycle) completionAnchor(task model.Task, cls Classification, today dates.Day) dates.Day {
	if cls.VirtualPending {
		return cls.EffectiveDue
	}
	if task.DueDate != "" {
		if due, err := dates.Parse(task.DueDate); err == nil {
			return due
		}
	}
	return today
}

func (l *Lifecycle) mirrorPut(ctx context.Context, task model.Task, synced bool) {
	if l.mirror == nil {
		return
	}
	if err := l.mirror.Put(ctx, task, synced); err != nil {
		l.logger.Warn("mirror write failed", "task", task.ID, "err", err)
	}
}

func (l *Lifecycle) acquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight[id] {
		return false
	}
	l.inFlight[id] = true
	return true
}

func (l *Lifecycle) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, id)
}
