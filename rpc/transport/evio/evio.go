package evio

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/transport"
	"github.com/ValentinKolb/minidb/rpc/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/tidwall/evio"
)

var Logger = logger.GetLogger("transport/evio")

// session is stored as evio connection context
type session struct {
	id  uint64
	buf *base.LineBuffer
}

// serverTransport runs a single evio loop. All callbacks are executed on that loop,
// so the connection table needs no locking.
type serverTransport struct {
	handler transport.LineHandler
	conns   *base.ConnTable[uint64]
	nextID  uint64
}

// NewEvioServerTransport creates a new evio based server transport
func NewEvioServerTransport() transport.IServerTransport {
	return &serverTransport{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) GetName() string {
	return "evio"
}

func (t *serverTransport) RegisterHandler(handler transport.LineHandler) {
	t.handler = handler
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig, ready transport.ReadyFunc) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.conns = base.NewConnTable[uint64](config.ReadBufferSize)

	var (
		events evio.Events
		fatal  error
		tick   = config.Tick()
	)

	// one loop keeps every callback on the same goroutine
	events.NumLoops = 1

	events.Serving = func(srv evio.Server) evio.Action {
		addr := srv.Addrs[0]
		Logger.Infof("ready, listening on %s", addr)
		if ready != nil {
			ready(addr)
		}
		return evio.None
	}

	events.Opened = func(c evio.Conn) ([]byte, evio.Options, evio.Action) {
		t.nextID++
		sess := &session{id: t.nextID, buf: t.conns.Add(t.nextID)}
		c.SetContext(sess)
		common.ConnectionOpened()
		Logger.Debugf("connect: conn %d from %s", sess.id, c.RemoteAddr())
		return nil, evio.Options{ReuseInputBuffer: true}, evio.None
	}

	events.Closed = func(c evio.Conn, err error) evio.Action {
		sess, ok := c.Context().(*session)
		if ok && t.conns.Remove(sess.id) {
			common.ConnectionClosed()
			Logger.Debugf("disconnect: conn %d", sess.id)
		}
		if err == nil {
			return evio.None
		}

		common.ConnectionErrors.Inc()
		if config.Strict {
			fatal = base.Fatal("recv", err)
			return evio.Shutdown
		}
		Logger.Warningf("recv: connection closed with error: %v", err)
		return evio.None
	}

	events.Data = func(c evio.Conn, in []byte) ([]byte, evio.Action) {
		sess, ok := c.Context().(*session)
		if !ok {
			return nil, evio.Close
		}
		if len(in) == 0 {
			return nil, evio.None
		}

		common.BytesReceived.Add(len(in))
		_, _ = sess.buf.Write(in)

		var out []byte
		sess.buf.DrainLines(func(line []byte) bool {
			out = append(out, t.handler(line)...)
			return true
		})
		common.BytesSent.Add(len(out))
		return out, evio.None
	}

	// evio has no external wake-up, so the shutdown flag is polled
	events.Tick = func() (delay time.Duration, action evio.Action) {
		if ctx.Err() != nil {
			Logger.Infof("shutdown requested, closing %d connections", t.conns.Len())
			return 0, evio.Shutdown
		}
		return tick, evio.None
	}

	addr := "tcp://" + net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	if err := evio.Serve(events, addr); err != nil {
		return base.Fatal("serve", err)
	}
	return fatal
}
