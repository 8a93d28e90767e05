package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/taskflow/internal/model"
)

// Level is the severity of a toast
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// StatusMsg asks the root model to show a toast
type StatusMsg struct {
	Level Level
	Text  string
}

// Toast returns a command that emits a StatusMsg
func Toast(level Level, text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Level: level, Text: text}
	}
}

// QuickAddMsg opens the task form, prefilled with whatever fields are set
type QuickAddMsg struct {
	Title    string
	Category string
	Priority model.Priority
	DueDate  *model.Date
}

// EditTaskMsg opens the task form on an existing task
type EditTaskMsg struct {
	Task model.Task
}

// FormSubmittedMsg carries a validated form. EditingID is empty for a new task.
type FormSubmittedMsg struct {
	EditingID string
	Task      model.Task
}

// FormCancelledMsg closes the form without saving
type FormCancelledMsg struct{}

// SearchCommittedMsg carries search text that survived the debounce window
type SearchCommittedMsg struct {
	Query string
}

// Store results

// TasksLoadedMsg contains loaded tasks and categories
type TasksLoadedMsg struct {
	Tasks      []model.Task
	Categories []model.Category
	Err        error
}

// TaskCreatedMsg indicates a task was created
type TaskCreatedMsg struct {
	Task model.Task
	Err  error
}

// TaskUpdatedMsg indicates a task was updated
type TaskUpdatedMsg struct {
	Task model.Task
	Err  error
}

// TaskToggledMsg indicates task completion was toggled
type TaskToggledMsg struct {
	Task model.Task
	Err  error
}

// TasksDeletedMsg indicates one or more tasks were deleted
type TasksDeletedMsg struct {
	IDs     []string
	Removed int
	Err     error
}
