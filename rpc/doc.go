// Package rpc contains the network side of miniDB: everything between a TCP socket and
// the store.
//
// The package is organized into several subpackages:
//
//   - common: configuration structures, logging setup and the server metrics.
//
//   - transport: the event loop abstraction (IServerTransport) with two implementations,
//     a raw epoll reactor (linux) and a portable tidwall/evio engine. transport/base holds
//     the per-connection line framing shared by both.
//
//   - server: the server lifecycle (load snapshot, serve, save snapshot) and the optional
//     status listener.
//
//   - client: a small client for the line protocol.
package rpc
