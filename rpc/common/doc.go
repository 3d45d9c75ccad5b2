// Package common provides data structures and utilities shared across the miniDB
// server, its transports and the client.
//
// The package focuses on:
//   - Configuration structures for server and client components
//   - Custom logging implementation integrated with Dragonboat's logger package
//   - Process wide server metrics (VictoriaMetrics)
//
// Key Components:
//
//   - ServerConfig: Listener address, snapshot path, transport and store selection,
//     event loop tuning and logging. String() renders a human readable overview that
//     is logged on startup.
//
//   - ClientConfig: Endpoint and timeout used by the line protocol client.
//
//   - Logger: Custom logging implementation installed as Dragonboat logger factory,
//     providing consistent "LEVEL | package | message" lines across the application.
//
//   - Metrics: Connection, traffic and command counters plus gauges for open
//     connections and stored keys.
package common
