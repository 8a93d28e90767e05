package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dori/taskflow/internal/model"
	"github.com/google/uuid"
)

// Latency is the simulated network delay range applied to every call.
// A zero Max disables the delay.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// DefaultLatency mimics a slow backend
var DefaultLatency = Latency{Min: 150 * time.Millisecond, Max: 300 * time.Millisecond}

// Memory is an in-memory TaskStore seeded at construction.
// It is safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category

	latency Latency
	now     func() time.Time
	newID   func() string
}

// MemoryOption configures a Memory store
type MemoryOption func(*Memory)

// WithLatency sets the simulated delay range
func WithLatency(l Latency) MemoryOption {
	return func(m *Memory) { m.latency = l }
}

// WithClock replaces time.Now, which decides creation times and "today"
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(newID func() string) MemoryOption {
	return func(m *Memory) { m.newID = newID }
}

// NewMemory creates a store holding a copy of the seed
func NewMemory(seed Seed, opts ...MemoryOption) *Memory {
	m := &Memory{
		tasks:      make([]model.Task, 0, len(seed.Tasks)),
		categories: append([]model.Category(nil), seed.Categories...),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, t := range seed.Tasks {
		m.tasks = append(m.tasks, t.Clone())
	}
	if len(m.categories) == 0 {
		m.categories = model.DefaultCategories()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// delay sleeps for a random duration inside the latency range, or until ctx is done
func (m *Memory) delay(ctx context.Context) error {
	if m.latency.Max <= 0 {
		return ctx.Err()
	}
	d := m.latency.Min
	if spread := m.latency.Max - m.latency.Min; spread > 0 {
		d += rand.N(spread)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Memory) today() model.Date {
	return model.DateOf(m.now())
}

// indexOf must be called with mu held
func (m *Memory) indexOf(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) snapshot(keep func(model.Task) bool) []model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if keep == nil || keep(t) {
			result = append(result, t.Clone())
		}
	}
	return result
}

// GetAll returns every task
func (m *Memory) GetAll(ctx context.Context) ([]model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}
	return m.snapshot(nil), nil
}

// GetByID returns a single task by ID
func (m *Memory) GetByID(ctx context.Context, id string) (*model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	t := m.tasks[i].Clone()
	return &t, nil
}

// Create creates a new task
func (m *Memory) Create(ctx context.Context, task model.Task) (model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return model.Task{}, err
	}

	task = task.Clone()
	task.ID = m.newID()
	task.CreatedAt = m.now()
	task.Completed = false
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()

	return task.Clone(), nil
}

// Update applies a patch to an existing task
func (m *Memory) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return model.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	m.tasks[i] = patch.Apply(m.tasks[i])
	return m.tasks[i].Clone(), nil
}

// Delete removes a task
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := m.delay(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

// BulkDelete removes every listed task that exists
func (m *Memory) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if err := m.delay(ctx); err != nil {
		return 0, err
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tasks[:0]
	removed := 0
	for _, t := range m.tasks {
		if drop[t.ID] {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.tasks = kept
	return removed, nil
}

// ToggleComplete flips a task between pending and completed
func (m *Memory) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return model.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	m.tasks[i].Completed = !m.tasks[i].Completed
	return m.tasks[i].Clone(), nil
}

// Search returns tasks whose title, category or notes contain the query
func (m *Memory) Search(ctx context.Context, query string) ([]model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}
	return m.snapshot(func(t model.Task) bool { return t.Matches(query) }), nil
}

// GetByFilter returns the tasks selected by a filter tag, evaluated against today
func (m *Memory) GetByFilter(ctx context.Context, filter model.Filter) ([]model.Task, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}
	today := m.today()
	return m.snapshot(func(t model.Task) bool { return filter.Matches(t, today) }), nil
}

// Categories returns the static category list
func (m *Memory) Categories(ctx context.Context) ([]model.Category, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Category(nil), m.categories...), nil
}

var _ TaskStore = (*Memory)(nil)
