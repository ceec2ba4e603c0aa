// Package notification delivers idle and timeout alerts for a watched
// session.
package notification

import "time"

// Reasons attached to notifications by the CLI host.
const (
	ReasonIdle    = "idle"
	ReasonResume  = "resume"
	ReasonTimeout = "timeout"
)

// Notification represents a notification to be sent.
type Notification struct {
	Title   string
	Message string
	Time    time.Time
	Reason  string
}

// Notifier sends notifications.
type Notifier interface {
	Send(notification Notification) error
}
