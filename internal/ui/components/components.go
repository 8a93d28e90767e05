// Package components renders the small reusable widgets of the task UI.
// Every function is pure: it takes data and returns a rendered string using
// the current theme.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskflow/internal/ui/theme"
)

// Button renders a labelled button; focused buttons use the primary color
func Button(label string, focused bool) string {
	styles := theme.Current.Styles
	if focused {
		return styles.ButtonFocused.Render(label)
	}
	return styles.Button.Render(label)
}

// Checkbox renders a checked or empty box
func Checkbox(checked bool) string {
	t := theme.Current.Theme
	if checked {
		return lipgloss.NewStyle().Foreground(t.Success).Render("[x]")
	}
	return lipgloss.NewStyle().Foreground(t.Subtle).Render("[ ]")
}

// Chip renders a filter chip. A negative count is omitted.
// An empty color falls back to the theme's foreground.
func Chip(label string, count int, active bool, color lipgloss.Color) string {
	styles := theme.Current.Styles
	text := label
	if count >= 0 {
		text = fmt.Sprintf("%s %d", label, count)
	}
	if active {
		style := styles.ChipActive
		if color != "" {
			style = style.Background(color)
		}
		return style.Render(text)
	}
	style := styles.Chip
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(text)
}

// ringGlyphs are quarter steps of a filled circle
var ringGlyphs = []string{"○", "◔", "◑", "◕", "●"}

// RingGlyph picks the circle glyph nearest to percent
func RingGlyph(percent float64) string {
	switch {
	case percent <= 0:
		return ringGlyphs[0]
	case percent >= 100:
		return ringGlyphs[4]
	}
	// 1-37 ◔, 38-62 ◑, 63-99 ◕
	idx := int(percent/25 + 0.5)
	return ringGlyphs[max(1, min(idx, 3))]
}

// ProgressRing renders completion as a glyph, a percentage and a bar of the given width
func ProgressRing(percent float64, width int) string {
	t := theme.Current.Theme
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if width < 4 {
		width = 4
	}

	filled := int(percent / 100 * float64(width))
	bar := lipgloss.NewStyle().Foreground(t.RingFilled).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(t.RingEmpty).Render(strings.Repeat("░", width-filled))

	head := lipgloss.NewStyle().Foreground(t.RingFilled).Bold(true).
		Render(fmt.Sprintf("%s %d%%", RingGlyph(percent), int(percent+0.5)))

	return head + "\n" + bar
}
