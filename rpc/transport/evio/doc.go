// Package evio implements a portable miniDB event loop on top of
// github.com/tidwall/evio. It runs exactly one evio loop, so just like the epoll
// transport every callback (accept, data, close) is executed on a single goroutine
// and the store needs no locking.
//
// Differences to the epoll transport:
//
//   - Responses produced from one read are returned to evio as a single output
//     buffer. evio queues bytes the socket cannot take immediately instead of
//     dropping them.
//
//   - evio offers no way to interrupt its poll from another goroutine, so the shutdown
//     flag (context cancellation) is checked on every tick (ServerConfig.TickMillisecond).
//
//   - Connections are identified by a sequence number instead of their descriptor.
package evio
