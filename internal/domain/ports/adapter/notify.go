package adapter

// Notifier surfaces dismissible, user-facing outcome notifications.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// ProgressSink is the presentation surface driven by job monitors: one
// human-readable progress line per tracked job. Purely reactive, holds no
// logic of its own.
type ProgressSink interface {
	Show(correlationID, text string)
	Hide(correlationID string)
}
