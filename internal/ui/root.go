package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskflow/internal/app"
	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/notify"
	"github.com/dori/taskflow/internal/ui/theme"
	"github.com/dori/taskflow/internal/ui/views"
)

type toast struct {
	level views.Level
	text  string
	id    int
}

// RootModel owns the header search bar, the task manager, the task form
// and the toast line, and routes messages between them.
type RootModel struct {
	app      *app.App
	logger   *slog.Logger
	notifier *notify.Notifier
	now      func() time.Time
	keys     KeyMap
	help     help.Model
	width    int
	height   int

	screen      Screen
	helpVisible bool
	search      views.SearchBar
	manager     views.TaskManager
	form        views.TaskForm

	toast   *toast
	toastID int

	// overdue reminder goes out once per session
	overdueNotified bool
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	logger := application.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := views.DefaultDebounce
	if cfg := application.Config; cfg != nil {
		if cfg.SearchDebounce > 0 {
			debounce = cfg.SearchDebounce
		}
		if cfg.Theme != "" && !theme.SetByName(cfg.Theme) {
			logger.Warn("unknown theme, keeping default", "theme", cfg.Theme)
		}
	}

	return RootModel{
		app:      application,
		logger:   logger,
		notifier: application.Notifier,
		now:      time.Now,
		keys:     DefaultKeyMap(),
		help:     h,
		screen:   ScreenTasks,
		search:   views.NewSearchBar(debounce),
		manager:  views.NewTaskManager(application.Store, logger, time.Now),
	}
}

// Init loads the task list
func (m RootModel) Init() tea.Cmd {
	return m.manager.Init()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case views.StatusMsg:
		m.toastID++
		m.toast = &toast{level: msg.Level, text: msg.Text, id: m.toastID}
		if msg.Level == views.LevelError {
			m.logger.Warn("toast", "text", msg.Text)
		}
		id := m.toastID
		return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		})

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case views.QuickAddMsg:
		m.form = views.NewTaskForm(m.manager.Categories(), m.now).Prefill(msg).SetWidth(m.width)
		m.screen = ScreenForm
		return m, m.form.Init()

	case views.EditTaskMsg:
		m.form = views.NewTaskForm(m.manager.Categories(), m.now).Edit(msg.Task).SetWidth(m.width)
		m.screen = ScreenForm
		return m, m.form.Init()

	case views.FormCancelledMsg:
		m.screen = ScreenTasks
		return m, nil

	case views.FormSubmittedMsg:
		m.screen = ScreenTasks
		if msg.EditingID == "" {
			return m, m.manager.CreateTask(msg.Task)
		}
		return m, m.manager.UpdateTask(msg.EditingID, model.PatchFrom(msg.Task))

	case views.SearchCommittedMsg:
		m.manager = m.manager.SetSearch(msg.Query)
		return m, nil

	case views.TasksLoadedMsg:
		var notifyCmd tea.Cmd
		if msg.Err == nil && !m.overdueNotified {
			m.overdueNotified = true
			overdue := 0
			today := model.DateOf(m.now())
			for i := range msg.Tasks {
				if msg.Tasks[i].IsOverdue(today) {
					overdue++
				}
			}
			notifyCmd = m.notify(func(n *notify.Notifier) error { return n.SendOverdueSummary(overdue) })
		}
		return m, tea.Batch(m.updateManager(msg), notifyCmd)

	case views.TaskToggledMsg:
		var notifyCmd tea.Cmd
		if msg.Err == nil && msg.Task.Completed {
			title := msg.Task.Title
			notifyCmd = m.notify(func(n *notify.Notifier) error { return n.SendTaskCompleted(title) })
		}
		return m, tea.Batch(m.updateManager(msg), notifyCmd)

	case views.TaskCreatedMsg, views.TaskUpdatedMsg, views.TasksDeletedMsg:
		return m, m.updateManager(msg)
	}

	// Everything else: debounce ticks, cursor blinks
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	cmds = append(cmds, cmd)
	if m.screen == ScreenForm {
		newForm, cmd := m.form.Update(msg)
		m.form = newForm.(views.TaskForm)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// ctrl+t always works (unlikely to type)
	if key.Matches(msg, m.keys.ThemeCycle) {
		m.cycleTheme()
		return m, nil
	}

	if m.search.Focused() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	if m.screen == ScreenForm {
		newForm, cmd := m.form.Update(msg)
		m.form = newForm.(views.TaskForm)
		return m, cmd
	}

	if m.helpVisible {
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.helpVisible = false
		}
		return m, nil
	}

	// Pending delete confirmation owns the keyboard
	if !m.manager.IsInputMode() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = true
			return m, nil
		case key.Matches(msg, m.keys.Search):
			var cmd tea.Cmd
			m.search, cmd = m.search.Focus()
			return m, cmd
		}
	}

	return m, m.updateManager(msg)
}

func (m *RootModel) updateManager(msg tea.Msg) tea.Cmd {
	newManager, cmd := m.manager.Update(msg)
	m.manager = newManager.(views.TaskManager)
	return cmd
}

// notify runs a desktop notification off the update loop
func (m RootModel) notify(send func(*notify.Notifier) error) tea.Cmd {
	if !m.notifier.IsEnabled() {
		return nil
	}
	n, logger := m.notifier, m.logger
	return func() tea.Msg {
		if err := send(n); err != nil {
			logger.Warn("notification failed", "error", err)
		}
		return nil
	}
}

// Reserve: 1 line for header + 2 lines for footer (toast + hints)
const chromeHeight = 4

func (m *RootModel) resize() {
	contentHeight := max(0, m.height-chromeHeight)
	m.manager = m.manager.SetSize(m.width, contentHeight)
	m.form = m.form.SetWidth(m.width)
	m.search = m.search.SetWidth(max(10, m.width/3))
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := max(0, m.height-chromeHeight)

	var content string
	switch {
	case m.helpVisible:
		content = m.renderHelp()
	case m.screen == ScreenForm:
		content = m.form.View()
	default:
		content = m.manager.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the title, the search bar and the theme name
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("taskflow")
	left := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", m.search.View())

	right := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1).
		Render(fmt.Sprintf("theme: %s", t.Name))

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders the toast line and context-aware key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	var toastLine string
	if m.toast != nil {
		style := styles.ToastInfo
		switch m.toast.level {
		case views.LevelSuccess:
			style = styles.ToastSuccess
		case views.LevelError:
			style = styles.ToastError
		}
		toastLine = style.Render(m.toast.text)
	}

	hint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var hints string
	switch {
	case m.search.Focused():
		hints = hint("enter", "apply") + sep + hint("esc", "clear")
	case m.screen == ScreenForm:
		hints = hint("tab", "next field") + sep + hint("←/→", "choose") + sep +
			hint("ctrl+s", "save") + sep + hint("esc", "cancel")
	case m.helpVisible:
		hints = hint("?/esc", "close help")
	case m.manager.IsInputMode():
		hints = hint("y", "confirm") + sep + hint("n/esc", "cancel")
	default:
		hints = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	return toastLine + "\n" + hints
}

// renderHelp renders the keybinding overlay from the key map
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	sections := []string{"Navigation", "Selection", "Task Actions", "Filters", "General"}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Taskflow Help"))
	b.WriteString("\n")

	for i, group := range m.keys.FullHelp() {
		b.WriteString(sectionStyle.Render(sections[i]))
		b.WriteString("\n")
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(descStyle.Render(h.Desc))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))
	return b.String()
}

// cycleTheme advances to the next theme and announces it
func (m *RootModel) cycleTheme() {
	next := theme.Next()
	theme.SetTheme(next)
	m.toastID++
	m.toast = &toast{level: views.LevelInfo, text: fmt.Sprintf("Theme: %s", next.Name), id: m.toastID}
}
