package transport

import (
	"context"
	"net"

	"github.com/ValentinKolb/minidb/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// LineHandler is a function type that handles a single request line.
// It is called by a server transport for every complete line received on a connection,
// in arrival order and always from the transport's event loop goroutine.
// The line does not include the trailing newline and is only valid during the call.
// The returned response is written back to the originating connection.
type LineHandler func(line []byte) (resp []byte)

// ReadyFunc is called once the transport is listening and accepting connections
type ReadyFunc func(addr net.Addr)

// IServerTransport is the interface for the event loop of a miniDB server
type IServerTransport interface {
	// RegisterHandler registers the line handler for the transport layer
	RegisterHandler(handler LineHandler)
	// Listen opens the listener and runs the event loop until ctx is cancelled.
	// Events already pulled from the multiplexer are processed before Listen returns.
	// A nil error means orderly shutdown; any error is fatal for the server.
	Listen(ctx context.Context, config common.ServerConfig, ready ReadyFunc) error
	// GetName returns the name of the transport (e.g. "epoll", "evio")
	GetName() string
}
