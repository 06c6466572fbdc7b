package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses      uint64
	LoginFailures       uint64
	Registrations       uint64
	AccountSyncs        uint64
	AccountSyncFailures uint64
	TransactionSyncs    uint64
	TxSyncFailures      uint64
	SyncDurationCount   uint64
	SyncDurationTotalNs int64
	ChatMessages        uint64
	ChatFailures        uint64
	ChatFallbacks       uint64
	ChatDurationCount   uint64
	ChatDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses      uint64
	loginFailures       uint64
	registrations       uint64
	accountSyncs        uint64
	accountSyncFailures uint64
	transactionSyncs    uint64
	txSyncFailures      uint64
	syncDurationCount   uint64
	syncDurationTotalNs int64
	chatMessages        uint64
	chatFailures        uint64
	chatFallbacks       uint64
	chatDurationCount   uint64
	chatDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccesses:      atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:       atomic.LoadUint64(&m.loginFailures),
		Registrations:       atomic.LoadUint64(&m.registrations),
		AccountSyncs:        atomic.LoadUint64(&m.accountSyncs),
		AccountSyncFailures: atomic.LoadUint64(&m.accountSyncFailures),
		TransactionSyncs:    atomic.LoadUint64(&m.transactionSyncs),
		TxSyncFailures:      atomic.LoadUint64(&m.txSyncFailures),
		SyncDurationCount:   atomic.LoadUint64(&m.syncDurationCount),
		SyncDurationTotalNs: atomic.LoadInt64(&m.syncDurationTotalNs),
		ChatMessages:        atomic.LoadUint64(&m.chatMessages),
		ChatFailures:        atomic.LoadUint64(&m.chatFailures),
		ChatFallbacks:       atomic.LoadUint64(&m.chatFallbacks),
		ChatDurationCount:   atomic.LoadUint64(&m.chatDurationCount),
		ChatDurationTotalNs: atomic.LoadInt64(&m.chatDurationTotalNs),
	}
}

// IncLogin increments the login counter for the outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == "success" {
		atomic.AddUint64(&m.loginSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncRegistration increments the registration counter.
func (m *InMemoryRecorder) IncRegistration() {
	atomic.AddUint64(&m.registrations, 1)
}

// IncAccountSync increments the account sync counter for the outcome.
func (m *InMemoryRecorder) IncAccountSync(status string) {
	if status == "success" {
		atomic.AddUint64(&m.accountSyncs, 1)
		return
	}
	atomic.AddUint64(&m.accountSyncFailures, 1)
}

// IncTransactionSync increments the transaction sync counter for the outcome.
func (m *InMemoryRecorder) IncTransactionSync(status string) {
	if status == "success" {
		atomic.AddUint64(&m.transactionSyncs, 1)
		return
	}
	atomic.AddUint64(&m.txSyncFailures, 1)
}

// ObserveSyncDuration records a Plaid sync duration.
func (m *InMemoryRecorder) ObserveSyncDuration(duration time.Duration) {
	atomic.AddUint64(&m.syncDurationCount, 1)
	atomic.AddInt64(&m.syncDurationTotalNs, duration.Nanoseconds())
}

// IncChatMessage increments the chat counter for the outcome.
func (m *InMemoryRecorder) IncChatMessage(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.chatMessages, 1)
	case "fallback":
		atomic.AddUint64(&m.chatFallbacks, 1)
	default:
		atomic.AddUint64(&m.chatFailures, 1)
	}
}

// ObserveChatDuration records an assistant round-trip duration.
func (m *InMemoryRecorder) ObserveChatDuration(duration time.Duration) {
	atomic.AddUint64(&m.chatDurationCount, 1)
	atomic.AddInt64(&m.chatDurationTotalNs, duration.Nanoseconds())
}
