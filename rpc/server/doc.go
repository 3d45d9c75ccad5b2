// Package server implements the lifecycle of a miniDB server process.
//
// A Server owns the store and runs one transport (see rpc/transport) on top of it:
//
//  1. the snapshot file is loaded into the store (a missing file means an empty store)
//  2. a command.Dispatcher is registered as the line handler of the transport
//  3. the transport runs its event loop until the context is cancelled
//  4. the store is written back to the snapshot file
//
// If the transport fails, Serve returns the error without touching the snapshot file.
//
// When ServerConfig.MetricsEndpoint is set, the server additionally serves
//
//   - /metrics: all VictoriaMetrics counters and gauges in the Prometheus text format
//   - /info: a JSON document describing the running server (see Info)
//
// on a separate HTTP listener. The handlers only read atomic counters and never touch the store.
package server
