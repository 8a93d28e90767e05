package ui

import "time"

// Screen is the content shown below the header
type Screen int

const (
	ScreenTasks Screen = iota
	ScreenForm
)

// String returns the display name for a screen
func (s Screen) String() string {
	switch s {
	case ScreenTasks:
		return "Tasks"
	case ScreenForm:
		return "Form"
	default:
		return "Unknown"
	}
}

// toastDuration is how long a toast stays in the footer
const toastDuration = 3 * time.Second

// toastExpiredMsg clears the toast with the matching id.
// A newer toast has a higher id and survives older expiries.
type toastExpiredMsg struct {
	id int
}
