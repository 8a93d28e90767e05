package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/store"
	"github.com/google/uuid"
)

const taskColumns = `id, title, category, priority, due_date, completed, notes, created_at`

var _ store.TaskStore = (*DB)(nil)

// GetAll returns all tasks in insertion order
func (db *DB) GetAll(ctx context.Context) ([]model.Task, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.scanTasks(rows)
}

// GetByID returns a single task by ID, or nil if there is none
func (db *DB) GetByID(ctx context.Context, id string) (*model.Task, error) {
	row := db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := db.scanTaskRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// Create creates a new task
func (db *DB) Create(ctx context.Context, task model.Task) (model.Task, error) {
	task = task.Clone()
	task.ID = uuid.New().String()
	task.CreatedAt = db.now()
	task.Completed = false
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	if err := db.insertTask(ctx, db.DB, task); err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// insertTask writes a task verbatim, appending it after the current last task
func (db *DB) insertTask(ctx context.Context, ex execer, task model.Task) error {
	completed := 0
	if task.Completed {
		completed = 1
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO tasks (id, seq, title, category, priority, due_date, completed, notes, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks), ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.Title, task.Category, task.Priority, dueValue(task.DueDate), completed, task.Notes, task.CreatedAt)
	return err
}

// Update applies a patch to an existing task
func (db *DB) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var updated model.Task
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		current, err := db.scanTaskRow(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		updated = patch.Apply(*current)
		completed := 0
		if updated.Completed {
			completed = 1
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE tasks SET title = ?, category = ?, priority = ?, due_date = ?, completed = ?, notes = ?
			WHERE id = ?
		`, updated.Title, updated.Category, updated.Priority, dueValue(updated.DueDate), completed, updated.Notes, id)
		return err
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("update %s: %w", id, err)
	}
	return updated, nil
}

// Delete deletes a task
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// BulkDelete deletes every listed task that exists, in one transaction
func (db *DB) BulkDelete(ctx context.Context, ids []string) (int, error) {
	removed := 0
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	return removed, nil
}

// ToggleComplete toggles a task between pending and completed
func (db *DB) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	res, err := db.ExecContext(ctx, `UPDATE tasks SET completed = 1 - completed WHERE id = ?`, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, err)
	} else if n == 0 {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, store.ErrNotFound)
	}

	t, err := db.GetByID(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, err)
	}
	if t == nil {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, store.ErrNotFound)
	}
	return *t, nil
}

// Search returns tasks whose title, category or notes contain the query.
// Matching happens in Go so case folding agrees with the other stores.
func (db *DB) Search(ctx context.Context, query string) ([]model.Task, error) {
	all, err := db.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var result []model.Task
	for _, t := range all {
		if t.Matches(query) {
			result = append(result, t)
		}
	}
	return result, nil
}

// GetByFilter returns the tasks selected by a filter tag.
// Dates are stored as YYYY-MM-DD so text comparison orders them correctly.
func (db *DB) GetByFilter(ctx context.Context, filter model.Filter) ([]model.Task, error) {
	today := model.DateOf(db.now()).String()

	var where string
	var args []interface{}
	switch filter {
	case model.FilterToday:
		where, args = `WHERE due_date = ?`, []interface{}{today}
	case model.FilterUpcoming:
		where, args = `WHERE due_date IS NOT NULL AND due_date > ?`, []interface{}{today}
	case model.FilterOverdue:
		where, args = `WHERE due_date IS NOT NULL AND due_date < ? AND completed = 0`, []interface{}{today}
	case model.FilterCompleted:
		where = `WHERE completed = 1`
	case model.FilterPending:
		where = `WHERE completed = 0`
	}

	rows, err := db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.scanTasks(rows)
}

// Helper functions

func dueValue(d *model.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func (db *DB) scanTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := db.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanTaskRow(s scanner) (*model.Task, error) {
	var t model.Task
	var dueDate *string
	var completed int

	err := s.Scan(
		&t.ID, &t.Title, &t.Category, &t.Priority,
		&dueDate, &completed, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Completed = completed == 1
	if dueDate != nil {
		parsed, err := model.ParseDate(*dueDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.DueDate = &parsed
	}

	return &t, nil
}
