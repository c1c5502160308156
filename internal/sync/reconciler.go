// Package sync replays locally-completed tasks that never reached the
// backend. The lifecycle leaves such records in the mirror with synced set
// to false; the reconciler re-sends them on a schedule until the backend
// confirms or reports the task already complete.
package sync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"taskcycle/internal/api"
	"taskcycle/internal/model"
)

// Mirror is the slice of the persisted mirror the reconciler needs.
type Mirror interface {
	ListUnsynced(ctx context.Context) ([]model.Task, error)
	Put(ctx context.Context, task model.Task, synced bool) error
	MarkSynced(ctx context.Context, id string) error
}

type Reconciler struct {
	store  api.Store
	mirror Mirror
	logger *slog.Logger
	cron   *cron.Cron
}

func NewReconciler(store api.Store, mirror Mirror, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, mirror: mirror, logger: logger}
}

// Start schedules periodic passes; spec uses cron syntax, e.g. "@every 5m".
func (r *Reconciler) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := r.Pass(context.Background()); err != nil {
			r.logger.Warn("reconciliation pass failed", "err", err)
		}
	}); err != nil {
		return err
	}
	r.cron = c
	c.Start()
	return nil
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// Pass replays every unsynced record once. A backend answer of "already
// complete" settles the record just like an acknowledgment; per-task
// failures are logged and left for the next pass, never dropped.
func (r *Reconciler) Pass(ctx context.Context) error {
	pending, err := r.mirror.ListUnsynced(ctx)
	if err != nil {
		return err
	}
	for _, task := range pending {
		saved, err := r.store.UpdateTask(ctx, task)
		switch {
		case err == nil:
			if err := r.mirror.Put(ctx, saved, true); err != nil {
				r.logger.Warn("mirror write failed", "task", task.ID, "err", err)
			}
		case errors.Is(err, api.ErrAlreadyComplete):
			if err := r.mirror.MarkSynced(ctx, task.ID); err != nil {
				r.logger.Warn("mark synced failed", "task", task.ID, "err", err)
			}
		default:
			r.logger.Warn("task still unsynced", "task", task.ID, "err", err)
		}
	}
	return nil
}
