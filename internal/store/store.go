// Package store defines the task store contract shared by the in-memory,
// SQLite and HTTP implementations, and provides the in-memory one.
package store

import (
	"context"
	"errors"

	"github.com/dori/taskflow/internal/model"
)

// ErrNotFound is returned when an operation names a task that does not exist.
// Bulk operations never return it.
var ErrNotFound = errors.New("task not found")

// TaskStore is the task CRUD surface used by the UI, CLI and REST server
type TaskStore interface {
	// GetAll returns every task in insertion order
	GetAll(ctx context.Context) ([]model.Task, error)

	// GetByID returns nil and no error when the task does not exist
	GetByID(ctx context.Context, id string) (*model.Task, error)

	// Create assigns the ID and creation time and always stores the task as not completed
	Create(ctx context.Context, task model.Task) (model.Task, error)

	Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id string) error

	// BulkDelete removes the tasks that exist and returns how many were removed
	BulkDelete(ctx context.Context, ids []string) (int, error)

	ToggleComplete(ctx context.Context, id string) (model.Task, error)
	Search(ctx context.Context, query string) ([]model.Task, error)
	GetByFilter(ctx context.Context, filter model.Filter) ([]model.Task, error)

	Categories(ctx context.Context) ([]model.Category, error)
}
