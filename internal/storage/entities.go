// Package storage is the client-side persisted mirror of the task list. It
// lets the app render and complete tasks while the backend is unreachable;
// rows written optimistically carry synced = false until the reconciliation
// pass lands them.
package storage

import "time"

type TaskRecord struct {
	ID                 string
	Title              string
	Description        string
	DueDate            string
	IsComplete         bool
	CompletedAt        *time.Time
	RecurrenceType     string
	RecurrenceInterval int
	NextOccurrenceDate string
	CreatedAt          time.Time
	Synced             bool
}
