package notify

import (
	"context"

	"github.com/dkarpov/studysync/internal/logging"
)

// LogNotifier writes notifications to the engine log. Default sink when the
// host does not provide one.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, severity Severity, title, message string) {
	switch severity {
	case SeverityError:
		n.log.Error(ctx, title, "message", message)
	case SeverityWarning:
		n.log.Warn(ctx, title, "message", message)
	default:
		n.log.Info(ctx, title, "message", message)
	}
}
