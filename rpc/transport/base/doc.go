// Package base provides the building blocks shared by all miniDB transports,
// independent of the event loop implementation.
//
// Key Components:
//
//   - LineBuffer: per-connection accumulator for the unbounded inbound byte stream.
//     Bytes are appended as they arrive; NextLine extracts complete newline terminated
//     lines and keeps any partial remainder for the next read.
//
//   - ConnTable: generic mapping from a connection identifier (a file descriptor for
//     epoll, a sequence number for evio) to the connection's LineBuffer.
//
//   - FatalError: error type marking failures that terminate the whole server.
//
// Thread Safety:
//
//	None of the types are synchronized. They are owned by a single event loop goroutine.
package base
