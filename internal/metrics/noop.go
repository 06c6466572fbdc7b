package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration() {}

// IncAccountSync is a no-op.
func (n *NoopRecorder) IncAccountSync(status string) {}

// IncTransactionSync is a no-op.
func (n *NoopRecorder) IncTransactionSync(status string) {}

// ObserveSyncDuration is a no-op.
func (n *NoopRecorder) ObserveSyncDuration(duration time.Duration) {}

// IncChatMessage is a no-op.
func (n *NoopRecorder) IncChatMessage(status string) {}

// ObserveChatDuration is a no-op.
func (n *NoopRecorder) ObserveChatDuration(duration time.Duration) {}
