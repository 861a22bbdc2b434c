// Package notify defines the notification sink the engine writes to. The
// host UI decides how notifications are presented; the engine only reports
// download outcomes, connectivity transitions, available updates, and sync
// summaries.
package notify

import "context"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Severity Severity
	Title    string
	Message  string
}

type Notifier interface {
	Notify(ctx context.Context, severity Severity, title, message string)
}
