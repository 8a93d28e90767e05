package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     func(name string, args ...string) error
}

// NewNotifier creates a notifier that shells out to notify-send
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n != nil && n.enabled
}

// Args builds the notify-send argument list
func (notification Notification) Args() []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}
	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "taskflow")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

// Send sends a desktop notification. A nil or disabled notifier does nothing.
func (n *Notifier) Send(notification Notification) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.run("notify-send", notification.Args()...)
}

// SendTaskCompleted announces a task being checked off
func (n *Notifier) SendTaskCompleted(taskTitle string) error {
	return n.Send(Notification{
		Title:   "Task completed",
		Body:    taskTitle,
		Urgency: UrgencyLow,
		Timeout: 5 * time.Second,
		Icon:    "object-select-symbolic",
	})
}

// SendOverdueSummary reminds the user of overdue tasks; zero sends nothing
func (n *Notifier) SendOverdueSummary(count int) error {
	if count <= 0 {
		return nil
	}
	body := "1 task is overdue"
	if count > 1 {
		body = fmt.Sprintf("%d tasks are overdue", count)
	}
	return n.Send(Notification{
		Title:   "Overdue tasks",
		Body:    body,
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}
