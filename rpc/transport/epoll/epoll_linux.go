//go:build linux

package epoll

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/transport"
	"github.com/ValentinKolb/minidb/rpc/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sys/unix"
)

var Logger = logger.GetLogger("transport/epoll")

// -----------------------------------------------------------
// Reactor state
// -----------------------------------------------------------

// reactor is the single-threaded event loop of the epoll transport.
// All fields except stopping are only touched by the goroutine running Listen.
type reactor struct {
	handler transport.LineHandler
	config  common.ServerConfig

	listenFd int
	epollFd  int
	wakeFd   int // eventfd used to interrupt epoll_wait on shutdown

	conns    *base.ConnTable[int]
	readBuf  []byte
	events   []unix.EpollEvent
	stopping atomic.Bool
}

// NewEpollServerTransport creates a new epoll based server transport
func NewEpollServerTransport() transport.IServerTransport {
	return &reactor{
		listenFd: -1,
		epollFd:  -1,
		wakeFd:   -1,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (r *reactor) GetName() string {
	return "epoll"
}

func (r *reactor) RegisterHandler(handler transport.LineHandler) {
	r.handler = handler
}

func (r *reactor) Listen(ctx context.Context, config common.ServerConfig, ready transport.ReadyFunc) error {
	if r.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	r.config = config
	r.conns = base.NewConnTable[int](config.ReadBufferSize)
	r.readBuf = make([]byte, config.ReadBufferSize)
	r.events = make([]unix.EpollEvent, config.MaxEvents)
	r.stopping.Store(false)
	defer r.teardown()

	addr, err := r.setup()
	if err != nil {
		return err
	}

	// translate cancellation into the shutdown flag plus a wake-up of epoll_wait
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			r.stopping.Store(true)
			r.wake()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	Logger.Infof("ready, listening on %s (max %d events per wait)", addr, config.MaxEvents)
	if ready != nil {
		ready(addr)
	}

	return r.run()
}

// --------------------------------------------------------------------------
// Setup & Teardown
// --------------------------------------------------------------------------

// setup creates the non-blocking listening socket, the epoll instance and the wake-up
// eventfd and registers both descriptors for read readiness
func (r *reactor) setup() (net.Addr, error) {
	ip := net.ParseIP(r.config.Host).To4()
	if ip == nil {
		return nil, fmt.Errorf("invalid IPv4 host %q", r.config.Host)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, base.Fatal("socket", err)
	}
	r.listenFd = fd

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, base.Fatal("setsockopt", err)
	}

	sa := &unix.SockaddrInet4{Port: r.config.Port}
	copy(sa.Addr[:], ip)
	if err := unix.Bind(fd, sa); err != nil {
		return nil, base.Fatal("bind", err)
	}
	if err := unix.Listen(fd, r.config.Backlog); err != nil {
		return nil, base.Fatal("listen", err)
	}

	if r.epollFd, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC); err != nil {
		return nil, base.Fatal("epoll_create1", err)
	}
	if r.wakeFd, err = unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC); err != nil {
		return nil, base.Fatal("eventfd", err)
	}
	if err := r.register(r.listenFd); err != nil {
		return nil, err
	}
	if err := r.register(r.wakeFd); err != nil {
		return nil, err
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		return nil, base.Fatal("getsockname", err)
	}
	addr := &net.TCPAddr{IP: net.IP(append([]byte(nil), ip...)), Port: r.config.Port}
	if sa4, ok := bound.(*unix.SockaddrInet4); ok {
		addr.Port = sa4.Port
	}
	return addr, nil
}

// teardown closes every descriptor still owned by the reactor
func (r *reactor) teardown() {
	for _, fd := range r.conns.IDs() {
		r.conns.Remove(fd)
		_ = unix.Close(fd)
		common.ConnectionClosed()
	}
	for _, fd := range []*int{&r.wakeFd, &r.epollFd, &r.listenFd} {
		if *fd != -1 {
			_ = unix.Close(*fd)
			*fd = -1
		}
	}
}

// register adds fd to the epoll set (level-triggered read readiness)
func (r *reactor) register(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return base.Fatal("epoll_ctl", err)
	}
	return nil
}

// wake interrupts a blocking epoll_wait. It is the only method called from outside
// the event loop goroutine.
func (r *reactor) wake() {
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	if _, err := unix.Write(r.wakeFd, one[:]); err != nil && !errors.Is(err, unix.EAGAIN) {
		Logger.Errorf("failed to wake event loop: %v", err)
	}
}

// --------------------------------------------------------------------------
// Event Loop
// --------------------------------------------------------------------------

// run waits for readiness events until the shutdown flag is set. Every event of a batch
// is handled before the flag is checked again.
func (r *reactor) run() error {
	for !r.stopping.Load() {
		n, err := unix.EpollWait(r.epollFd, r.events, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return base.Fatal("epoll_wait", err)
		}

		for i := 0; i < n; i++ {
			fd := int(r.events[i].Fd)

			switch fd {
			case r.listenFd:
				err = r.accept()
			case r.wakeFd:
				r.drainWake()
			default:
				err = r.receive(fd)
			}
			if err != nil {
				return err
			}
		}
	}

	Logger.Infof("shutdown requested, closing %d connections", r.conns.Len())
	return nil
}

// drainWake resets the eventfd counter so it stops reporting readiness
func (r *reactor) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(r.wakeFd, buf[:])
}

// accept admits all pending connections
func (r *reactor) accept() error {
	for {
		nfd, _, err := unix.Accept4(r.listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN):
				return nil
			case errors.Is(err, unix.EINTR), errors.Is(err, unix.ECONNABORTED):
				continue
			default:
				return base.Fatal("accept", err)
			}
		}

		if err := r.register(nfd); err != nil {
			_ = unix.Close(nfd)
			return err
		}
		r.conns.Add(nfd)
		common.ConnectionOpened()
		Logger.Debugf("connect: fd %d", nfd)
	}
}

// receive drains the socket into the connection's buffer and dispatches every complete line
func (r *reactor) receive(fd int) error {
	buf, ok := r.conns.Get(fd)
	if !ok {
		// already closed while handling an earlier event of this batch
		return nil
	}

	eof := false
	for {
		n, err := unix.Read(fd, r.readBuf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				break
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return r.fault(fd, "recv", err)
		}
		if n == 0 {
			eof = true
			break
		}
		common.BytesReceived.Add(n)
		_, _ = buf.Write(r.readBuf[:n])
	}

	// complete lines that arrived together with the close are still executed
	var (
		closed bool
		err    error
	)
	buf.DrainLines(func(line []byte) bool {
		closed, err = r.send(fd, r.handler(line))
		return err == nil && !closed
	})
	if err != nil || closed || !eof {
		return err
	}
	return r.disconnect(fd)
}

// send writes resp with a single best-effort call. Bytes the socket cannot take
// immediately are dropped. The bool result reports whether the connection was torn down.
func (r *reactor) send(fd int, resp []byte) (bool, error) {
	for {
		n, err := unix.SendmsgN(fd, resp, nil, nil, unix.MSG_NOSIGNAL)
		if err != nil {
			switch {
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				common.ShortWrites.Inc()
				Logger.Debugf("send: fd %d would block, dropped %d bytes", fd, len(resp))
				return false, nil
			default:
				return true, r.fault(fd, "send", err)
			}
		}

		common.BytesSent.Add(n)
		if n < len(resp) {
			common.ShortWrites.Inc()
			Logger.Debugf("send: fd %d short write, dropped %d bytes", fd, len(resp)-n)
		}
		return false, nil
	}
}

// fault handles an unexpected socket error on a client connection. In strict mode the
// error is fatal for the server, otherwise only the affected connection is closed.
func (r *reactor) fault(fd int, op string, err error) error {
	common.ConnectionErrors.Inc()
	if r.config.Strict {
		return base.Fatal(op, err)
	}
	Logger.Warningf("%s: fd %d: %v, closing connection", op, fd, err)
	return r.disconnect(fd)
}

// disconnect removes fd from the connection table and the epoll set and closes it
func (r *reactor) disconnect(fd int) error {
	if !r.conns.Remove(fd) {
		return nil
	}
	defer common.ConnectionClosed()

	if err := unix.EpollCtl(r.epollFd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		_ = unix.Close(fd)
		return base.Fatal("epoll_ctl", err)
	}
	_ = unix.Close(fd)
	Logger.Debugf("disconnect: fd %d", fd)
	return nil
}
