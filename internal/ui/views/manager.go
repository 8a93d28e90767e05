package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/store"
	"github.com/dori/taskflow/internal/taskview"
	"github.com/dori/taskflow/internal/ui/components"
	"github.com/dori/taskflow/internal/ui/theme"
)

// storeTimeout bounds a single store call made from the UI
const storeTimeout = 10 * time.Second

const sidebarWidth = 26

// TaskManager is the main screen: a sidebar with progress and filters
// next to the derived task list.
type TaskManager struct {
	store  store.TaskStore
	logger *slog.Logger
	now    func() time.Time
	width  int
	height int

	tasks      []model.Task
	categories []model.Category
	state      taskview.State
	view       taskview.Result
	selection  taskview.Selection

	cursor       int
	scrollOffset int

	loading bool
	loadErr error

	// ids awaiting delete confirmation
	deleteIDs []string
}

// NewTaskManager creates the task manager in its loading state
func NewTaskManager(ts store.TaskStore, logger *slog.Logger, now func() time.Time) TaskManager {
	if logger == nil {
		logger = slog.Default()
	}
	v := TaskManager{
		store:     ts,
		logger:    logger,
		now:       now,
		selection: taskview.NewSelection(),
		state:     taskview.State{Filter: model.FilterAll},
		loading:   true,
	}
	v.derive()
	return v
}

// Init implements tea.Model
func (v TaskManager) Init() tea.Cmd {
	return v.loadTasks()
}

// IsInputMode returns true while a delete confirmation is pending
func (v TaskManager) IsInputMode() bool {
	return len(v.deleteIDs) > 0
}

// SetSize updates the view dimensions
func (v TaskManager) SetSize(width, height int) TaskManager {
	v.width = width
	v.height = height
	return v
}

// Categories returns the loaded categories
func (v TaskManager) Categories() []model.Category {
	return v.categories
}

// State returns the current filter state
func (v TaskManager) State() taskview.State {
	return v.state
}

// Result returns the current derived view
func (v TaskManager) Result() taskview.Result {
	return v.view
}

// Selected returns the selected task ids in stable order
func (v TaskManager) Selected() []string {
	return v.selection.IDs()
}

// Current returns the task under the cursor
func (v TaskManager) Current() (model.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.view.Tasks) {
		return model.Task{}, false
	}
	return v.view.Tasks[v.cursor], true
}

// SetSearch narrows the list to tasks matching query
func (v TaskManager) SetSearch(query string) TaskManager {
	v.state.Search = query
	v.cursor = 0
	v.scrollOffset = 0
	v.derive()
	return v
}

// SetFilter selects a status filter
func (v TaskManager) SetFilter(f model.Filter) TaskManager {
	v.state.Filter = f
	v.cursor = 0
	v.scrollOffset = 0
	v.derive()
	return v
}

// SetCategory selects a category; empty means all
func (v TaskManager) SetCategory(name string) TaskManager {
	v.state.Category = name
	v.cursor = 0
	v.scrollOffset = 0
	v.derive()
	return v
}

func (v *TaskManager) derive() {
	v.view = taskview.Derive(v.tasks, v.state, model.DateOf(v.now()))
	if v.cursor >= len(v.view.Tasks) {
		v.cursor = max(0, len(v.view.Tasks)-1)
	}
	v.ensureCursorVisible()
}

// Update handles messages for the task manager
func (v TaskManager) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		v.loading = false
		if msg.Err != nil {
			v.loadErr = msg.Err
			v.logger.Error("load tasks failed", "error", msg.Err)
			return v, Toast(LevelError, "Failed to load tasks")
		}
		v.loadErr = nil
		v.tasks = msg.Tasks
		v.categories = msg.Categories
		v.selection.Prune(taskIDs(v.tasks))
		v.derive()
		return v, nil

	case TaskCreatedMsg:
		if msg.Err != nil {
			v.logger.Error("create task failed", "error", msg.Err)
			return v, Toast(LevelError, "Failed to create task")
		}
		// newest first, so it leads any tie under the stable sort
		v.tasks = append([]model.Task{msg.Task}, v.tasks...)
		v.derive()
		v.focusTask(msg.Task.ID)
		return v, Toast(LevelSuccess, "Task created successfully!")

	case TaskUpdatedMsg:
		if msg.Err != nil {
			v.logger.Error("update task failed", "error", msg.Err)
			return v, Toast(LevelError, "Failed to update task")
		}
		v.replace(msg.Task)
		return v, Toast(LevelSuccess, "Task updated successfully!")

	case TaskToggledMsg:
		if msg.Err != nil {
			v.logger.Error("toggle task failed", "error", msg.Err)
			return v, Toast(LevelError, "Failed to update task")
		}
		v.replace(msg.Task)
		if msg.Task.Completed {
			return v, Toast(LevelSuccess, "Task completed! 🎉")
		}
		return v, Toast(LevelInfo, "Task marked as pending")

	case TasksDeletedMsg:
		if msg.Err != nil {
			v.logger.Error("delete tasks failed", "ids", msg.IDs, "error", msg.Err)
			if len(msg.IDs) > 1 {
				return v, Toast(LevelError, "Failed to delete tasks")
			}
			return v, Toast(LevelError, "Failed to delete task")
		}
		v.remove(msg.IDs)
		if len(msg.IDs) == 1 {
			return v, Toast(LevelSuccess, "Task deleted successfully")
		}
		return v, Toast(LevelSuccess, fmt.Sprintf("%s deleted successfully", plural(len(msg.IDs), "task")))

	case tea.KeyMsg:
		if len(v.deleteIDs) > 0 {
			return v.handleDeleteConfirm(msg)
		}
		return v.handleNormalMode(msg)
	}

	return v, nil
}

func (v TaskManager) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.loading {
		return v, nil
	}
	if v.loadErr != nil {
		if msg.String() == "r" {
			v.loading = true
			v.loadErr = nil
			return v, v.loadTasks()
		}
		return v, nil
	}

	switch msg.String() {
	// Navigation
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
			v.ensureCursorVisible()
		}
	case "down", "j":
		if v.cursor < len(v.view.Tasks)-1 {
			v.cursor++
			v.ensureCursorVisible()
		}
	case "g":
		v.cursor = 0
		v.ensureCursorVisible()
	case "G":
		v.cursor = max(0, len(v.view.Tasks)-1)
		v.ensureCursorVisible()
	case "pgup", "ctrl+u":
		v.cursor = max(0, v.cursor-v.visibleTaskCount())
		v.ensureCursorVisible()
	case "pgdown", "ctrl+d":
		v.cursor = max(0, min(len(v.view.Tasks)-1, v.cursor+v.visibleTaskCount()))
		v.ensureCursorVisible()

	// Filters
	case "]", "f":
		return v.SetFilter(v.state.Filter.Next()), nil
	case "[", "F":
		return v.SetFilter(v.state.Filter.Prev()), nil
	case "1", "2", "3", "4", "5", "6":
		filters := model.AllFilters()
		return v.SetFilter(filters[int(msg.String()[0]-'1')]), nil
	case "c":
		return v.SetCategory(v.cycleCategory(1)), nil
	case "C":
		return v.SetCategory(v.cycleCategory(-1)), nil
	case "0":
		v.state = taskview.State{Filter: model.FilterAll, Search: v.state.Search}
		v.cursor = 0
		v.derive()

	// Selection
	case " ":
		if task, ok := v.Current(); ok {
			v.selection.Toggle(task.ID)
			if v.cursor < len(v.view.Tasks)-1 {
				v.cursor++
				v.ensureCursorVisible()
			}
		}
	case "V":
		v.selection.ToggleAll(taskIDs(v.view.Tasks))
	case "esc":
		v.selection.Clear()

	// Task actions
	case "a", "n":
		category := v.state.Category
		return v, func() tea.Msg { return QuickAddMsg{Category: category} }
	case "enter", "e":
		if task, ok := v.Current(); ok {
			return v, func() tea.Msg { return EditTaskMsg{Task: task} }
		}
	case "tab", "x":
		if task, ok := v.Current(); ok {
			return v, v.toggleTask(task.ID)
		}
	case "p":
		if task, ok := v.Current(); ok {
			next := task.Priority.Next()
			return v, v.UpdateTask(task.ID, model.TaskPatch{Priority: &next})
		}
	case "d", "delete":
		if ids := v.selection.IDs(); len(ids) > 0 {
			v.deleteIDs = ids
		} else if task, ok := v.Current(); ok {
			v.deleteIDs = []string{task.ID}
		}
	case "r":
		v.loading = true
		return v, v.loadTasks()
	}

	return v, nil
}

func (v TaskManager) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		ids := v.deleteIDs
		v.deleteIDs = nil
		return v, v.deleteTasks(ids)
	case "n", "N", "esc":
		v.deleteIDs = nil
	}
	return v, nil
}

func (v TaskManager) cycleCategory(step int) string {
	names := make([]string, 0, len(v.categories)+1)
	names = append(names, "")
	for _, c := range v.categories {
		names = append(names, c.Name)
	}
	for i, name := range names {
		if name == v.state.Category {
			return names[(i+step+len(names))%len(names)]
		}
	}
	return ""
}

// visibleTaskCount returns how many cards fit; a card takes up to four lines
func (v TaskManager) visibleTaskCount() int {
	available := (v.height - 4) / 4
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *TaskManager) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(0, len(v.view.Tasks)-visible)
	v.scrollOffset = max(0, min(v.scrollOffset, maxOffset))
}

func (v *TaskManager) focusTask(id string) {
	for i, t := range v.view.Tasks {
		if t.ID == id {
			v.cursor = i
			v.ensureCursorVisible()
			return
		}
	}
}

func (v *TaskManager) replace(task model.Task) {
	for i := range v.tasks {
		if v.tasks[i].ID == task.ID {
			v.tasks[i] = task
			break
		}
	}
	v.derive()
}

func (v *TaskManager) remove(ids []string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := v.tasks[:0:0]
	for _, t := range v.tasks {
		if !gone[t.ID] {
			kept = append(kept, t)
		}
	}
	v.tasks = kept
	v.selection.Remove(ids...)
	v.derive()
}

// Store commands

func (v TaskManager) loadTasks() tea.Cmd {
	ts := v.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		tasks, err := ts.GetAll(ctx)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		categories, err := ts.Categories(ctx)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks, Categories: categories}
	}
}

// CreateTask stores a new task
func (v TaskManager) CreateTask(task model.Task) tea.Cmd {
	ts := v.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		created, err := ts.Create(ctx, task)
		return TaskCreatedMsg{Task: created, Err: err}
	}
}

// UpdateTask applies a patch to a stored task
func (v TaskManager) UpdateTask(id string, patch model.TaskPatch) tea.Cmd {
	ts := v.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		updated, err := ts.Update(ctx, id, patch)
		return TaskUpdatedMsg{Task: updated, Err: err}
	}
}

func (v TaskManager) toggleTask(id string) tea.Cmd {
	ts := v.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		task, err := ts.ToggleComplete(ctx, id)
		return TaskToggledMsg{Task: task, Err: err}
	}
}

func (v TaskManager) deleteTasks(ids []string) tea.Cmd {
	ts := v.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if len(ids) == 1 {
			err := ts.Delete(ctx, ids[0])
			if errors.Is(err, store.ErrNotFound) {
				// already gone; the list is stale, not wrong
				err = nil
			}
			return TasksDeletedMsg{IDs: ids, Removed: 1, Err: err}
		}
		removed, err := ts.BulkDelete(ctx, ids)
		return TasksDeletedMsg{IDs: ids, Removed: removed, Err: err}
	}
}

// Rendering

// View renders the sidebar and the task list side by side
func (v TaskManager) View() string {
	sidebar := v.renderSidebar()
	listWidth := max(20, v.width-lipgloss.Width(sidebar)-1)
	list := v.renderList(listWidth)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", list)
}

func (v TaskManager) renderSidebar() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	b.WriteString(styles.Subtitle.Render("Progress"))
	b.WriteString("\n")
	b.WriteString(components.ProgressRing(v.view.Progress, sidebarWidth-4))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render(fmt.Sprintf("%d of %d done", v.view.Completed, v.view.Total)))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Filters"))
	b.WriteString("\n")
	for i, f := range model.AllFilters() {
		color := lipgloss.Color("")
		if f == model.FilterOverdue && v.view.Counts[f] > 0 {
			color = t.Error
		}
		chip := components.Chip(f.Label(), v.view.Counts[f], f == v.state.Filter, color)
		b.WriteString(styles.HelpKey.Render(fmt.Sprintf("%d ", i+1)))
		b.WriteString(chip)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.Subtitle.Render("Categories"))
	b.WriteString("\n")
	b.WriteString(components.Chip("All", -1, v.state.Category == "", ""))
	b.WriteString("\n")
	for _, c := range v.categories {
		count := 0
		for _, task := range v.tasks {
			if task.Category == c.Name && !task.Completed {
				count++
			}
		}
		label := components.CategoryGlyph(c.Icon) + " " + c.Name
		b.WriteString(components.Chip(label, count, v.state.Category == c.Name, lipgloss.Color(c.Color)))
		b.WriteString("\n")
	}

	if overdue := v.view.Counts[model.FilterOverdue]; overdue > 0 && !v.loading {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render(fmt.Sprintf("⚠ %s overdue", plural(overdue, "task"))))
	}

	return styles.Sidebar.Width(sidebarWidth).Render(b.String())
}

func (v TaskManager) renderList(width int) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	today := model.DateOf(v.now())

	var b strings.Builder

	heading := v.state.Filter.Label()
	if v.state.Category != "" {
		heading += " · " + v.state.Category
	}
	if v.state.Search != "" {
		heading += fmt.Sprintf(" · %q", v.state.Search)
	}
	b.WriteString(styles.Title.Render(heading))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(styles.Label.Render("Loading tasks…"))
		return b.String()
	case v.loadErr != nil:
		b.WriteString(styles.ToastError.Render("Failed to load tasks"))
		b.WriteString("\n")
		b.WriteString(styles.Label.Render(v.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(components.Button("Press r to retry", true))
		return b.String()
	}

	if len(v.deleteIDs) > 0 {
		confirm := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
		msg := "Are you sure you want to delete this task? (y/n)"
		if len(v.deleteIDs) > 1 {
			msg = fmt.Sprintf("Are you sure you want to delete %s? (y/n)", plural(len(v.deleteIDs), "task"))
		}
		b.WriteString(confirm.Render(msg))
		b.WriteString("\n\n")
	} else if n := len(v.selection); n > 0 {
		all := len(v.view.Tasks) > 0 && n >= len(v.view.Tasks)
		bar := components.Checkbox(all) + " " +
			lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render(plural(n, "task")+" selected") +
			"  " + components.Button("d Delete Selected", false)
		b.WriteString(bar)
		b.WriteString("\n\n")
	}

	if len(v.view.Tasks) == 0 {
		empty := lipgloss.NewStyle().Foreground(t.Subtle).Italic(true)
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("No tasks found"))
		b.WriteString("\n")
		b.WriteString(empty.Render("Get started by creating your first task or adjust your filters"))
		b.WriteString("\n\n")
		b.WriteString(components.Button("a Create First Task", true))
		return b.String()
	}

	visible := v.visibleTaskCount()
	end := min(v.scrollOffset+visible, len(v.view.Tasks))

	if v.scrollOffset > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	categories := make(map[string]model.Category, len(v.categories))
	for _, c := range v.categories {
		categories[c.Name] = c
	}
	for i := v.scrollOffset; i < end; i++ {
		task := v.view.Tasks[i]
		b.WriteString(components.TaskCard(task, components.CardOptions{
			Today:    today,
			Width:    width,
			Cursor:   i == v.cursor,
			Selected: v.selection[task.ID],
			Category: categories[task.Category],
		}))
		b.WriteString("\n")
	}

	if remaining := len(v.view.Tasks) - end; remaining > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return b.String()
}

func taskIDs(tasks []model.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
