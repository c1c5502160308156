package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"taskcycle/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

var ErrNotFound = errors.New("storage: not found")

type SQLiteMirror struct {
	db *sql.DB
}

func NewSQLiteMirror(db *sql.DB) (*SQLiteMirror, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteMirror{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteMirror, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	mirror, err := NewSQLiteMirror(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return mirror, nil
}

func (m *SQLiteMirror) Close() error {
	return m.db.Close()
}

// Put upserts one task; mirror rows have no identity beyond the task itself,
// so replacing wholesale is correct.
func (m *SQLiteMirror) Put(ctx context.Context, task model.Task, synced bool) error {
	record := fromTask(task, synced)
	_, err := m.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tasks
			(id, title, description, due_date, is_complete, completed_at,
			 recurrence_type, recurrence_interval, next_occurrence_date, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Title, record.Description, nullString(record.DueDate),
		boolInt(record.IsComplete), nullTime(record.CompletedAt),
		nullString(record.RecurrenceType), record.RecurrenceInterval,
		nullString(record.NextOccurrenceDate), mustTime(record.CreatedAt), boolInt(record.Synced),
	)
	return err
}

func (m *SQLiteMirror) Get(ctx context.Context, id string) (model.Task, bool, error) {
	row := m.db.QueryRowContext(ctx, selectColumns+` FROM tasks WHERE id = ?`, id)
	record, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, false, ErrNotFound
		}
		return model.Task{}, false, err
	}
	return toTask(record), record.Synced, nil
}

func (m *SQLiteMirror) ListAll(ctx context.Context) ([]model.Task, error) {
	return m.list(ctx, selectColumns+` FROM tasks ORDER BY created_at DESC`)
}

// ListUnsynced returns tasks written optimistically while the backend was
// unreachable, oldest first so reconciliation replays in order.
func (m *SQLiteMirror) ListUnsynced(ctx context.Context) ([]model.Task, error) {
	return m.list(ctx, selectColumns+` FROM tasks WHERE synced = 0 ORDER BY created_at ASC`)
}

func (m *SQLiteMirror) MarkSynced(ctx context.Context, id string) error {
	res, err := m.db.ExecContext(ctx, `UPDATE tasks SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (m *SQLiteMirror) Delete(ctx context.Context, id string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ReplaceSynced swaps in a fresh authoritative snapshot from the backend.
// Unsynced rows are kept: they hold local completions the backend has not
// seen yet and must survive until reconciliation lands them.
func (m *SQLiteMirror) ReplaceSynced(ctx context.Context, tasks []model.Task) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE synced = 1`); err != nil {
		return err
	}
	for _, task := range tasks {
		record := fromTask(task, true)
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO tasks
				(id, title, description, due_date, is_complete, completed_at,
				 recurrence_type, recurrence_interval, next_occurrence_date, created_at, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			record.ID, record.Title, record.Description, nullString(record.DueDate),
			boolInt(record.IsComplete), nullTime(record.CompletedAt),
			nullString(record.RecurrenceType), record.RecurrenceInterval,
			nullString(record.NextOccurrenceDate), mustTime(record.CreatedAt),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (m *SQLiteMirror) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		record, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, toTask(record))
	}
	return out, rows.Err()
}

const selectColumns = `SELECT id, title, description, due_date, is_complete, completed_at,
	recurrence_type, recurrence_interval, next_occurrence_date, created_at, synced`

func fromTask(t model.Task, synced bool) TaskRecord {
	record := TaskRecord{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		DueDate:            t.DueDate,
		IsComplete:         t.IsComplete,
		CompletedAt:        t.CompletedAt,
		NextOccurrenceDate: t.NextOccurrenceDate,
		CreatedAt:          t.CreatedAt,
		Synced:             synced,
	}
	if t.Recurrence != nil {
		record.RecurrenceType = string(t.Recurrence.Type)
		record.RecurrenceInterval = t.Recurrence.Interval
	}
	return record
}

func toTask(r TaskRecord) model.Task {
	t := model.Task{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		DueDate:            r.DueDate,
		IsComplete:         r.IsComplete,
		CompletedAt:        r.CompletedAt,
		NextOccurrenceDate: r.NextOccurrenceDate,
		CreatedAt:          r.CreatedAt,
	}
	if r.RecurrenceType != "" {
		t.Recurrence = &model.Rule{
			Type:     model.RecurrenceType(r.RecurrenceType),
			Interval: r.RecurrenceInterval,
		}
	}
	return t
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (TaskRecord, error) {
	var out TaskRecord
	var due, completed, ruleType, next sql.NullString
	var interval sql.NullInt64
	var isComplete, synced int
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &due, &isComplete, &completed,
		&ruleType, &interval, &next, &created, &synced); err != nil {
		return TaskRecord{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return TaskRecord{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return TaskRecord{}, err
	}
	out.DueDate = due.String
	out.IsComplete = isComplete == 1
	out.CompletedAt = completedAt
	out.RecurrenceType = ruleType.String
	out.RecurrenceInterval = int(interval.Int64)
	out.NextOccurrenceDate = next.String
	out.CreatedAt = createdAt
	out.Synced = synced == 1
	return out, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
