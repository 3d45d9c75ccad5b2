// Package transport defines the contract between the miniDB server and its event loop
// implementations. A transport owns the listening socket and every client connection,
// frames the inbound byte stream into lines and hands each line to a LineHandler.
//
// Implementations:
//   - epoll: Linux readiness multiplexing built directly on golang.org/x/sys/unix
//   - evio:  a portable single-loop implementation on top of github.com/tidwall/evio
//
// Shared building blocks (line framing, connection table, fatal errors) live in the
// base package.
package transport
