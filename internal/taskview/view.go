// Package taskview derives what the task list shows from the full task
// collection and the session's filter state.
//
// The pipeline is category filter, then status filter, then free-text search,
// followed by a stable three-key sort. Counts are computed over the whole
// collection so the filter badges do not move when a category is picked.
package taskview

import (
	"slices"

	"github.com/dori/taskflow/internal/model"
)

// State is the session-only filter state
type State struct {
	Filter   model.Filter
	Category string // empty = all categories
	Search   string
}

// IsFiltered returns true if any axis narrows the list
func (s State) IsFiltered() bool {
	return (s.Filter != "" && s.Filter != model.FilterAll) || s.Category != "" || s.Search != ""
}

// Counts maps every filter tag to the number of tasks it selects
type Counts map[model.Filter]int

// Result is the derived view
type Result struct {
	Tasks     []model.Task
	Counts    Counts
	Completed int
	Total     int
	Progress  float64 // percent of all tasks completed, 0-100
}

// Derive filters and sorts tasks and computes the aggregates.
// The input slice is not modified.
func Derive(tasks []model.Task, state State, today model.Date) Result {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}

	return Result{
		Tasks:     Apply(tasks, state, today),
		Counts:    CountByFilter(tasks, today),
		Completed: completed,
		Total:     len(tasks),
		Progress:  Progress(tasks),
	}
}

// Apply returns the filtered, sorted task list
func Apply(tasks []model.Task, state State, today model.Date) []model.Task {
	result := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if state.Category != "" && t.Category != state.Category {
			continue
		}
		if !state.Filter.Matches(t, today) {
			continue
		}
		if !t.Matches(state.Search) {
			continue
		}
		result = append(result, t)
	}
	Sort(result)
	return result
}

// Sort orders tasks in place: incomplete first, then priority High to Low,
// then due date ascending with dated tasks ahead of undated ones.
// Ties keep their input order.
func Sort(tasks []model.Task) {
	slices.SortStableFunc(tasks, Compare)
}

// Compare is the ordering used by Sort
func Compare(a, b model.Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}

	if diff := b.Priority.Weight() - a.Priority.Weight(); diff != 0 {
		return diff
	}

	switch {
	case a.DueDate != nil && b.DueDate != nil:
		return a.DueDate.Compare(*b.DueDate)
	case a.DueDate != nil:
		return -1
	case b.DueDate != nil:
		return 1
	}
	return 0
}

// CountByFilter counts tasks per filter tag over the given collection
func CountByFilter(tasks []model.Task, today model.Date) Counts {
	counts := make(Counts, len(model.AllFilters()))
	for _, f := range model.AllFilters() {
		counts[f] = 0
	}
	for _, t := range tasks {
		for _, f := range model.AllFilters() {
			if f.Matches(t, today) {
				counts[f]++
			}
		}
	}
	return counts
}

// Progress returns the percentage of tasks completed
func Progress(tasks []model.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(tasks)) * 100
}
