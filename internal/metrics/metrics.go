// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncLogin(status string) // status: "success" or "failure"
	IncRegistration()

	// Plaid sync metrics
	IncAccountSync(status string) // status: "success" or "failure"
	IncTransactionSync(status string)
	ObserveSyncDuration(duration time.Duration)

	// Assistant metrics
	IncChatMessage(status string) // status: "success", "failure", "fallback"
	ObserveChatDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
