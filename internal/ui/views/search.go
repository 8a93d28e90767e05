package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskflow/internal/ui/theme"
)

// DefaultDebounce is how long typing must pause before a search applies
const DefaultDebounce = 300 * time.Millisecond

// searchTickMsg fires when a debounce window closes.
// Only the tick matching the latest keystroke commits.
type searchTickMsg struct {
	seq   int
	query string
}

// SearchBar is the header search input.
// Keystrokes are debounced; enter commits at once and esc clears.
type SearchBar struct {
	input     textinput.Model
	debounce  time.Duration
	seq       int
	committed string
}

// NewSearchBar creates a search bar with the given debounce window
func NewSearchBar(debounce time.Duration) SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search tasks..."
	ti.Prompt = "⌕ "
	ti.CharLimit = 128
	return SearchBar{input: ti, debounce: debounce}
}

// Focus puts the cursor in the search bar
func (s SearchBar) Focus() (SearchBar, tea.Cmd) {
	cmd := s.input.Focus()
	return s, cmd
}

// Focused reports whether the search bar is capturing keys
func (s SearchBar) Focused() bool {
	return s.input.Focused()
}

// Value returns the text currently typed
func (s SearchBar) Value() string {
	return s.input.Value()
}

// Committed returns the last query passed on to the task list
func (s SearchBar) Committed() string {
	return s.committed
}

// SetWidth sets the input width
func (s SearchBar) SetWidth(width int) SearchBar {
	s.input.Width = width
	return s
}

// Update handles keys while focused and debounce ticks at any time
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd) {
	switch msg := msg.(type) {
	case searchTickMsg:
		if msg.seq != s.seq {
			// superseded by a later keystroke
			return s, nil
		}
		return s.commit(msg.query)

	case tea.KeyMsg:
		if !s.input.Focused() {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			s.input.Blur()
			s.seq++
			return s.commit(s.input.Value())
		case "esc":
			s.input.Blur()
			s.input.SetValue("")
			s.seq++
			return s.commit("")
		}

		before := s.input.Value()
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if s.input.Value() == before {
			return s, cmd
		}

		s.seq++
		seq, query := s.seq, s.input.Value()
		tick := tea.Tick(s.debounce, func(time.Time) tea.Msg {
			return searchTickMsg{seq: seq, query: query}
		})
		return s, tea.Batch(cmd, tick)
	}

	if s.input.Focused() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s SearchBar) commit(query string) (SearchBar, tea.Cmd) {
	query = strings.TrimSpace(query)
	if query == s.committed {
		return s, nil
	}
	s.committed = query
	return s, func() tea.Msg { return SearchCommittedMsg{Query: query} }
}

// View renders the search bar
func (s SearchBar) View() string {
	styles := theme.Current.Styles
	style := styles.Input
	if s.input.Focused() {
		style = styles.InputFocused
	}
	return style.BorderTop(false).BorderBottom(false).Render(s.input.View()) +
		lipgloss.NewStyle().Foreground(theme.Current.Theme.Subtle).Render(s.hint())
}

func (s SearchBar) hint() string {
	switch {
	case s.input.Focused():
		return " enter apply · esc clear"
	case s.committed != "":
		return " / edit"
	}
	return " / search"
}
