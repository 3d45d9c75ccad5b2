package common

import (
	"fmt"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Server metrics
// --------------------------------------------------------------------------

// The counters are registered in the default VictoriaMetrics set and exposed by the
// status listener under /metrics. They are updated from the event loop and may be read
// from any goroutine.
var (
	ConnectionsAccepted = metrics.GetOrCreateCounter("minidb_connections_accepted_total")
	ConnectionsClosed   = metrics.GetOrCreateCounter("minidb_connections_closed_total")
	ConnectionErrors    = metrics.GetOrCreateCounter("minidb_connection_errors_total")
	BytesReceived       = metrics.GetOrCreateCounter("minidb_received_bytes_total")
	BytesSent           = metrics.GetOrCreateCounter("minidb_sent_bytes_total")
	ShortWrites         = metrics.GetOrCreateCounter("minidb_short_writes_total")

	activeConnections atomic.Int64
	storedKeys        atomic.Int64

	_ = metrics.GetOrCreateGauge("minidb_connections_active", func() float64 {
		return float64(activeConnections.Load())
	})
	_ = metrics.GetOrCreateGauge("minidb_keys", func() float64 {
		return float64(storedKeys.Load())
	})
)

// ConnectionOpened records a newly registered connection
func ConnectionOpened() {
	ConnectionsAccepted.Inc()
	activeConnections.Add(1)
}

// ConnectionClosed records a removed connection
func ConnectionClosed() {
	ConnectionsClosed.Inc()
	activeConnections.Add(-1)
}

// ActiveConnections returns the number of currently open client connections
func ActiveConnections() int64 {
	return activeConnections.Load()
}

// SetStoredKeys publishes the current number of keys in the store
func SetStoredKeys(n int) {
	storedKeys.Store(int64(n))
}

// StoredKeys returns the last published number of keys
func StoredKeys() int64 {
	return storedKeys.Load()
}

// CommandCounter returns the counter for a verb/status combination
func CommandCounter(verb, status string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`minidb_commands_total{verb=%q,status=%q}`, verb, status))
}
