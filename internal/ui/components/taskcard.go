package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/ui/theme"
)

// CardOptions controls how a task card is drawn
type CardOptions struct {
	Today    model.Date
	Width    int
	Cursor   bool
	Selected bool

	// Category supplies the badge color; zero value renders a neutral badge.
	Category model.Category
}

// categoryGlyphs maps category icon names onto terminal glyphs
var categoryGlyphs = map[string]string{
	"Briefcase":    "▣",
	"User":         "☺",
	"ShoppingCart": "⛁",
	"Heart":        "♥",
}

// CategoryGlyph returns a glyph for a category icon name
func CategoryGlyph(icon string) string {
	if g, ok := categoryGlyphs[icon]; ok {
		return g
	}
	return "#"
}

// DueLabel formats a due date relative to today
func DueLabel(d, today model.Date) string {
	diff := int(d.Time().Sub(today.Time()).Hours() / 24)
	switch {
	case diff == 0:
		return "today"
	case diff == 1:
		return "tomorrow"
	case diff == -1:
		return "yesterday"
	case diff < 0:
		return fmt.Sprintf("%d days ago", -diff)
	case diff < 7:
		return d.Time().Format("Mon")
	case d.Year == today.Year:
		return d.Time().Format("Jan 2")
	}
	return d.Time().Format("Jan 2, 2006")
}

// TaskCard renders a task as a two or three line card:
// selection and completion boxes with the title, then the badges, then a notes preview.
func TaskCard(task model.Task, opts CardOptions) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	pointer := "  "
	if opts.Cursor {
		pointer = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("▸ ")
	}

	titleStyle := styles.TaskNormal
	switch {
	case task.Completed:
		titleStyle = styles.TaskDone
	case task.IsOverdue(opts.Today):
		titleStyle = styles.TaskOverdue
	case opts.Cursor:
		titleStyle = styles.TaskFocused
	}

	prefix := pointer + Checkbox(opts.Selected) + " " + Checkbox(task.Completed) + " "
	indent := strings.Repeat(" ", lipgloss.Width(prefix))

	title := task.Title
	if opts.Width > 0 {
		avail := opts.Width - lipgloss.Width(prefix)
		if avail < 10 {
			avail = 10
		}
		title = truncate(title, avail)
	}
	lines := []string{prefix + titleStyle.Render(title)}

	var meta []string

	badgeColor := t.Subtle
	if opts.Category.Color != "" {
		badgeColor = lipgloss.Color(opts.Category.Color)
	}
	if task.Category != "" {
		meta = append(meta, lipgloss.NewStyle().Foreground(badgeColor).
			Render(CategoryGlyph(opts.Category.Icon)+" "+task.Category))
	}

	priority := lipgloss.NewStyle().Foreground(t.PriorityColor(task.Priority.Weight())).
		Render("● " + string(task.Priority))
	meta = append(meta, priority)

	if task.DueDate != nil {
		label := DueLabel(*task.DueDate, opts.Today)
		dueStyle := lipgloss.NewStyle().Foreground(t.Subtle)
		switch {
		case task.IsOverdue(opts.Today):
			dueStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
			label = "Overdue: " + label
		case task.IsDueToday(opts.Today):
			dueStyle = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
			label = "Due today"
		}
		meta = append(meta, dueStyle.Render("◷ "+label))
	}
	lines = append(lines, indent+strings.Join(meta, "  "))

	if task.Notes != "" {
		notes := strings.Join(strings.Fields(task.Notes), " ")
		if opts.Width > 0 {
			notes = truncate(notes, opts.Width-len(indent))
		}
		lines = append(lines, indent+styles.Label.Render(notes))
	}

	card := strings.Join(lines, "\n")
	if opts.Cursor {
		card = lipgloss.NewStyle().Background(t.CardSelected).Render(card)
	}
	return card
}

// truncate shortens s to width cells, ending with an ellipsis
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
