package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/minidb/lib/command"
	"github.com/ValentinKolb/minidb/lib/snapshot"
	"github.com/ValentinKolb/minidb/lib/store"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("server")

// Server ties together the store, its snapshot file and the transport running the event loop.
//
// Usage:
//
//	s := server.NewServer(
//		config,
//		epoll.NewEpollServerTransport(),
//		lstore.NewLocalStore(),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
type Server struct {
	config    common.ServerConfig
	transport transport.IServerTransport
	store     store.IStore

	started  time.Time
	commands atomic.Uint64

	readyOnce sync.Once
	readyCh   chan struct{}
	addr      net.Addr
}

// NewServer creates a new miniDB server. The store should be empty; it is filled from
// the snapshot file when Serve is called.
func NewServer(
	config common.ServerConfig,
	transport transport.IServerTransport,
	store store.IStore,
) *Server {
	return &Server{
		config:    config,
		transport: transport,
		store:     store,
		readyCh:   make(chan struct{}),
	}
}

// Serve loads the snapshot, runs the transport until ctx is cancelled and writes the
// snapshot afterwards.
//
// If the transport fails with an error the snapshot is NOT written and the error is
// returned; the caller is expected to terminate the process.
func (s *Server) Serve(ctx context.Context) error {
	common.InitLoggers(s.config)

	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	Logger.Infof("Created miniDB Server")
	Logger.Infof(s.config.String())

	// load the snapshot before the listener is opened
	if _, err := snapshot.Load(s.config.SnapshotPath, s.store); err != nil {
		return err
	}
	common.SetStoredKeys(s.store.Len())

	dispatcher := command.NewDispatcher(s.store, s.observe)
	s.transport.RegisterHandler(dispatcher.Dispatch)

	s.started = time.Now()

	if s.config.MetricsEndpoint != "" {
		stop, err := s.startStatusListener()
		if err != nil {
			return err
		}
		defer stop()
	}

	Logger.Infof("starting %s transport", s.transport.GetName())

	if err := s.transport.Listen(ctx, s.config, s.markReady); err != nil {
		Logger.Errorf("transport failed, snapshot is not written: %v", err)
		return err
	}

	return snapshot.Save(s.config.SnapshotPath, s.store)
}

// Ready returns a channel that is closed as soon as the server accepts connections
func (s *Server) Ready() <-chan struct{} {
	return s.readyCh
}

// Addr returns the listening address, or nil if the server is not ready yet
func (s *Server) Addr() net.Addr {
	select {
	case <-s.readyCh:
		return s.addr
	default:
		return nil
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *Server) markReady(addr net.Addr) {
	s.readyOnce.Do(func() {
		s.addr = addr
		close(s.readyCh)
	})
}

// observe is called by the dispatcher after every command
func (s *Server) observe(cmd command.Command, resp command.Response) {
	s.commands.Add(1)

	verb := string(cmd.Verb)
	if verb == "" {
		verb = "INVALID"
	}
	common.CommandCounter(verb, resp.Status.String()).Inc()

	if cmd.Verb == command.VerbPost || cmd.Verb == command.VerbDelete {
		common.SetStoredKeys(s.store.Len())
	}
}
