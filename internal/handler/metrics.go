package handler

import (
	"fmt"
	"net/http"

	"github.com/billax/billax/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "billax_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "billax_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)
	writeMetric(w, "billax_registrations_total %d\n", snap.Registrations)

	writeMetric(w, "billax_account_syncs_total{status=\"success\"} %d\n", snap.AccountSyncs)
	writeMetric(w, "billax_account_syncs_total{status=\"failure\"} %d\n", snap.AccountSyncFailures)
	writeMetric(w, "billax_transaction_syncs_total{status=\"success\"} %d\n", snap.TransactionSyncs)
	writeMetric(w, "billax_transaction_syncs_total{status=\"failure\"} %d\n", snap.TxSyncFailures)
	writeMetric(w, "billax_sync_duration_seconds_count %d\n", snap.SyncDurationCount)
	writeMetric(w, "billax_sync_duration_seconds_sum %.6f\n", float64(snap.SyncDurationTotalNs)/1e9)

	writeMetric(w, "billax_chat_messages_total{status=\"success\"} %d\n", snap.ChatMessages)
	writeMetric(w, "billax_chat_messages_total{status=\"failure\"} %d\n", snap.ChatFailures)
	writeMetric(w, "billax_chat_messages_total{status=\"fallback\"} %d\n", snap.ChatFallbacks)
	writeMetric(w, "billax_chat_duration_seconds_count %d\n", snap.ChatDurationCount)
	writeMetric(w, "billax_chat_duration_seconds_sum %.6f\n", float64(snap.ChatDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
