package model

import (
	"strings"
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists priorities from most to least important
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority accepts full names or single letters, any case
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "hi", "h":
		return PriorityHigh, true
	case "medium", "med", "m":
		return PriorityMedium, true
	case "low", "l":
		return PriorityLow, true
	}
	return "", false
}

// Weight returns a numeric weight for sorting by priority
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Next cycles High -> Medium -> Low -> High
func (p Priority) Next() Priority {
	switch p {
	case PriorityHigh:
		return PriorityMedium
	case PriorityMedium:
		return PriorityLow
	default:
		return PriorityHigh
	}
}

// Task represents a todo item
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Priority  Priority  `json:"priority"`
	DueDate   *Date     `json:"dueDate,omitempty"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no pointers with t
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// IsOverdue returns true if the task is incomplete and its due day has passed
func (t *Task) IsOverdue(today Date) bool {
	return t.DueDate != nil && t.DueDate.Before(today) && !t.Completed
}

// IsDueToday returns true if the task is due today
func (t *Task) IsDueToday(today Date) bool {
	return t.DueDate != nil && t.DueDate.Equal(today)
}

// IsUpcoming returns true if the task is due after today
func (t *Task) IsUpcoming(today Date) bool {
	return t.DueDate != nil && t.DueDate.After(today)
}

// Matches reports whether query occurs in the title, category or notes,
// ignoring case. An empty query matches everything.
func (t *Task) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Category), q) ||
		strings.Contains(strings.ToLower(t.Notes), q)
}

// TaskPatch is a partial update; nil fields are left alone
type TaskPatch struct {
	Title        *string   `json:"title,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	DueDate      *Date     `json:"dueDate,omitempty"`
	ClearDueDate bool      `json:"clearDueDate,omitempty"`
	Completed    *bool     `json:"completed,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

// Apply returns t with the patch applied. id and createdAt never change.
func (p TaskPatch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	return t
}

// PatchFrom builds a patch that replaces every editable field of a task with src's
func PatchFrom(src Task) TaskPatch {
	title, category, priority, notes := src.Title, src.Category, src.Priority, src.Notes
	patch := TaskPatch{
		Title:    &title,
		Category: &category,
		Priority: &priority,
		Notes:    &notes,
	}
	if src.DueDate != nil {
		due := *src.DueDate
		patch.DueDate = &due
	} else {
		patch.ClearDueDate = true
	}
	return patch
}
