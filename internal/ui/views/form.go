package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/ui/components"
	"github.com/dori/taskflow/internal/ui/theme"
)

// formField identifies a focusable row of the task form
type formField int

const (
	fieldTitle formField = iota
	fieldCategory
	fieldPriority
	fieldDue
	fieldNotes
	fieldSubmit
	fieldCount
)

// FormErrors maps a field name (title, category, dueDate) to its message
type FormErrors map[string]string

// TaskForm creates or edits a task
type TaskForm struct {
	now        func() time.Time
	categories []model.Category
	editingID  string
	width      int

	focus    formField
	title    textinput.Model
	due      textinput.Model
	notes    textinput.Model
	category int // index into categories, -1 = none chosen
	priority model.Priority

	errors FormErrors
}

// NewTaskForm creates an empty form
func NewTaskForm(categories []model.Category, now func() time.Time) TaskForm {
	title := textinput.New()
	title.Placeholder = "What needs to be done?"
	title.CharLimit = 256

	due := textinput.New()
	due.Placeholder = "today, fri, 2024-06-01 (optional)"
	due.CharLimit = 32

	notes := textinput.New()
	notes.Placeholder = "Notes (optional)"
	notes.CharLimit = 1024

	f := TaskForm{
		now:        now,
		categories: categories,
		title:      title,
		due:        due,
		notes:      notes,
		category:   -1,
		priority:   model.PriorityMedium,
	}
	f.setFocus(fieldTitle)
	return f
}

// Prefill applies a quick-add request to a fresh form
func (f TaskForm) Prefill(msg QuickAddMsg) TaskForm {
	f.title.SetValue(msg.Title)
	if msg.Category != "" {
		f.category = f.categoryIndex(msg.Category)
	}
	if msg.Priority != "" {
		f.priority = msg.Priority
	}
	if msg.DueDate != nil {
		f.due.SetValue(msg.DueDate.String())
	}
	return f
}

// Edit loads an existing task into the form
func (f TaskForm) Edit(task model.Task) TaskForm {
	f.editingID = task.ID
	f.title.SetValue(task.Title)
	f.category = f.categoryIndex(task.Category)
	f.priority = task.Priority
	if task.DueDate != nil {
		f.due.SetValue(task.DueDate.String())
	}
	f.notes.SetValue(task.Notes)
	return f
}

// EditingID returns the id of the task being edited, or empty for a new task
func (f TaskForm) EditingID() string {
	return f.editingID
}

// SetWidth sets the form width
func (f TaskForm) SetWidth(width int) TaskForm {
	f.width = width
	inputWidth := max(20, width-20)
	f.title.Width = inputWidth
	f.due.Width = inputWidth
	f.notes.Width = inputWidth
	return f
}

func (f TaskForm) categoryIndex(name string) int {
	for i, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func (f *TaskForm) setFocus(field formField) {
	f.focus = field
	f.title.Blur()
	f.due.Blur()
	f.notes.Blur()
	switch field {
	case fieldTitle:
		f.title.Focus()
	case fieldDue:
		f.due.Focus()
	case fieldNotes:
		f.notes.Focus()
	}
}

// Init implements tea.Model
func (f TaskForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form navigation, editing and submission
func (f TaskForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, f.updateInput(msg)
	}

	switch keyMsg.String() {
	case "esc":
		return f, func() tea.Msg { return FormCancelledMsg{} }
	case "ctrl+s":
		return f.submit()
	case "tab", "down":
		f.setFocus((f.focus + 1) % fieldCount)
		return f, nil
	case "shift+tab", "up":
		f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		return f, nil
	case "enter":
		if f.focus == fieldSubmit || f.focus == fieldNotes {
			return f.submit()
		}
		f.setFocus(f.focus + 1)
		return f, nil
	}

	switch f.focus {
	case fieldCategory:
		switch keyMsg.String() {
		case "left", "h":
			f.category = f.cycleCategory(-1)
		case "right", "l", " ":
			f.category = f.cycleCategory(1)
		}
		return f, nil
	case fieldPriority:
		switch keyMsg.String() {
		case "left", "h":
			// Next walks High → Medium → Low; two steps go back one
			f.priority = f.priority.Next().Next()
		case "right", "l", " ":
			f.priority = f.priority.Next()
		}
		return f, nil
	case fieldSubmit:
		return f, nil
	}

	return f, f.updateInput(msg)
}

func (f *TaskForm) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	case fieldNotes:
		f.notes, cmd = f.notes.Update(msg)
	}
	return cmd
}

func (f TaskForm) cycleCategory(step int) int {
	n := len(f.categories)
	if n == 0 {
		return -1
	}
	if f.category < 0 {
		if step > 0 {
			return 0
		}
		return n - 1
	}
	return (f.category + step + n) % n
}

// Validate checks the form and builds the task it describes
func (f TaskForm) Validate() (model.Task, FormErrors) {
	errs := FormErrors{}
	task := model.Task{
		Title:    strings.TrimSpace(f.title.Value()),
		Priority: f.priority,
		Notes:    strings.TrimSpace(f.notes.Value()),
	}

	if task.Title == "" {
		errs["title"] = "Task title is required"
	}

	if f.category < 0 || f.category >= len(f.categories) {
		errs["category"] = "Category is required"
	} else {
		task.Category = f.categories[f.category].Name
	}

	if raw := strings.TrimSpace(f.due.Value()); raw != "" {
		today := model.DateOf(f.now())
		d, ok := model.ParseDueDate(raw, today)
		switch {
		case !ok:
			errs["dueDate"] = fmt.Sprintf("Unrecognized date %q", raw)
		case d.Before(today):
			errs["dueDate"] = "Due date cannot be in the past"
		default:
			task.DueDate = &d
		}
	}

	if len(errs) == 0 {
		return task, nil
	}
	return task, errs
}

// Errors returns the messages from the last failed submit
func (f TaskForm) Errors() FormErrors {
	return f.errors
}

func (f TaskForm) submit() (tea.Model, tea.Cmd) {
	task, errs := f.Validate()
	f.errors = errs
	if errs != nil {
		return f, Toast(LevelError, "Please fix the form errors")
	}
	editingID := f.editingID
	return f, func() tea.Msg {
		return FormSubmittedMsg{EditingID: editingID, Task: task}
	}
}

// View renders the form
func (f TaskForm) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	heading := "New Task"
	if f.editingID != "" {
		heading = "Edit Task"
	}

	labelStyle := lipgloss.NewStyle().Width(12).Foreground(t.Subtle)
	focusedLabel := labelStyle.Foreground(t.Primary).Bold(true)
	label := func(field formField, text string) string {
		if f.focus == field {
			return focusedLabel.Render(text)
		}
		return labelStyle.Render(text)
	}
	errLine := func(name string) string {
		if msg, ok := f.errors[name]; ok {
			return "\n" + strings.Repeat(" ", 12) + styles.FieldError.Render(msg)
		}
		return ""
	}

	var rows []string
	rows = append(rows, styles.Title.Render(heading))
	rows = append(rows, label(fieldTitle, "Title")+f.title.View()+errLine("title"))

	var cats []string
	for i, c := range f.categories {
		cats = append(cats, components.Chip(components.CategoryGlyph(c.Icon)+" "+c.Name, -1, i == f.category, lipgloss.Color(c.Color)))
	}
	if len(cats) == 0 {
		cats = append(cats, styles.Label.Render("no categories"))
	}
	rows = append(rows, label(fieldCategory, "Category")+strings.Join(cats, " ")+errLine("category"))

	var prios []string
	for _, p := range model.Priorities() {
		prios = append(prios, components.Chip(string(p), -1, p == f.priority, t.PriorityColor(p.Weight())))
	}
	rows = append(rows, label(fieldPriority, "Priority")+strings.Join(prios, " "))

	dueHint := ""
	if raw := strings.TrimSpace(f.due.Value()); raw != "" {
		if d, ok := model.ParseDueDate(raw, model.DateOf(f.now())); ok {
			dueHint = styles.Label.Render("  → " + d.Time().Format("Mon, Jan 2 2006"))
		}
	}
	rows = append(rows, label(fieldDue, "Due")+f.due.View()+dueHint+errLine("dueDate"))
	rows = append(rows, label(fieldNotes, "Notes")+f.notes.View())

	submitLabel := "Create Task"
	if f.editingID != "" {
		submitLabel = "Update Task"
	}
	rows = append(rows, "\n"+strings.Repeat(" ", 12)+components.Button(submitLabel, f.focus == fieldSubmit))

	hint := styles.HelpDesc.Render("tab/↑↓ move · ←/→ choose · enter next · ctrl+s save · esc cancel")
	rows = append(rows, "", hint)

	return styles.Panel.Render(strings.Join(rows, "\n"))
}
