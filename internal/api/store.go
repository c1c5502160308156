// Package api speaks to the backend task store. The engine only sees the
// Store interface; Client is the HTTP implementation of it.
package api

import (
	"context"
	"errors"

	"taskcycle/internal/model"
)

var (
	ErrNotFound = errors.New("api: task not found")

	// ErrAlreadyComplete maps the backend's 409-class "already in target
	// state" response. Callers must treat it as a successful no-op, never
	// as a failure, so retried completions stay idempotent.
	ErrAlreadyComplete = errors.New("api: task already complete")
)

type Store interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) (model.Task, error)
}
