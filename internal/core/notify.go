package core

import "log/slog"

// Notifier receives terminal import outcomes. It decouples presentation
// (toasts, celebratory animations, whatever the frontend does) from the
// state machine; implementations must not block.
type Notifier interface {
	ImportSucceeded(sessionID, message string)
	ImportFailed(sessionID, message string)
}

// LogNotifier writes outcomes to the structured log. It is the default
// when no UI-facing notifier is wired.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Log != nil {
		return n.Log
	}
	return slog.Default()
}

func (n LogNotifier) ImportSucceeded(sessionID, message string) {
	n.logger().Info("import succeeded", "session_id", sessionID, "message", message)
}

func (n LogNotifier) ImportFailed(sessionID, message string) {
	n.logger().Warn("import failed", "session_id", sessionID, "message", message)
}

// NopNotifier discards all notifications. Useful in tests.
type NopNotifier struct{}

func (NopNotifier) ImportSucceeded(string, string) {}
func (NopNotifier) ImportFailed(string, string)    {}
