// Package epoll implements the miniDB event loop directly on top of Linux epoll
// (golang.org/x/sys/unix). A single goroutine owns the non-blocking listening socket,
// every client socket and the connection table.
//
// Event handling:
//
//   - Listening socket readable: accept4 is called until EAGAIN, every new socket is
//     registered (level-triggered EPOLLIN) and gets an empty base.LineBuffer.
//
//   - Client socket readable: the socket is read until EAGAIN (data drained) or a zero
//     byte read (peer closed, the connection is removed). Afterwards every complete line
//     is passed to the handler and its response is sent with a single best-effort
//     send(MSG_NOSIGNAL); bytes the socket cannot take immediately are dropped.
//
//   - Wake-up eventfd readable: the shutdown flag has been set by Listen's context
//     watcher. The loop finishes the current batch and returns.
//
// Errors:
//
//	Failures of socket, bind, listen, epoll_create1, epoll_ctl, epoll_wait (except EINTR)
//	and accept (except EAGAIN) are returned as *base.FatalError. Receive and send errors
//	on a client socket close only that connection unless ServerConfig.Strict is set, in
//	which case they are fatal as well.
//
// On platforms other than Linux the constructor returns a transport whose Listen fails.
package epoll
