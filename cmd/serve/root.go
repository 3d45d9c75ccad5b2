package serve

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	cmdUtil "github.com/ValentinKolb/minidb/cmd/util"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/server"
	"github.com/ValentinKolb/minidb/rpc/transport/base"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmdConfig = common.DefaultServerConfig()

// SetupFlags adds all server flags to cmd
func SetupFlags(cmd *cobra.Command) {
	key := "host"
	cmd.Flags().String(key, common.DefaultHost, cmdUtil.WrapString("IPv4 address the server binds to"))

	key = "transport"
	cmd.Flags().String(key, "epoll", cmdUtil.WrapString("Event loop implementation (epoll, evio). epoll is only available on linux"))

	key = "store"
	cmd.Flags().String(key, "map", cmdUtil.WrapString("Store implementation (map, xsync)"))

	key = "strict"
	cmd.Flags().Bool(key, false, cmdUtil.WrapString("Treat any unexpected socket error on a client connection as fatal for the whole server. By default only the faulty connection is closed"))

	key = "max-events"
	cmd.Flags().Int(key, common.DefaultMaxEvents, cmdUtil.WrapString("Maximum number of readiness events handled per wait"))

	key = "read-buffer"
	cmd.Flags().Int(key, common.DefaultReadBufferSize, cmdUtil.WrapString("Size of the receive buffer in bytes"))

	key = "backlog"
	cmd.Flags().Int(key, common.DefaultBacklog, cmdUtil.WrapString("Listen backlog of the server socket"))

	key = "tick"
	cmd.Flags().Int(key, common.DefaultTickMillisecond, cmdUtil.WrapString("Shutdown poll interval in milliseconds (evio only)"))

	key = "metrics-endpoint"
	cmd.Flags().String(key, "", cmdUtil.WrapString("Address of the HTTP listener serving /metrics and /info (e.g. 127.0.0.1:9100). Disabled if empty"))
}

// ProcessConfig reads the positional arguments, command line flags and environment
// variables and converts them to the server configuration
func ProcessConfig(cmd *cobra.Command, args []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	port, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", args[0], err)
	}

	serveCmdConfig.Port = port
	serveCmdConfig.SnapshotPath = args[1]
	serveCmdConfig.Host = viper.GetString("host")
	serveCmdConfig.Transport = viper.GetString("transport")
	serveCmdConfig.Store = viper.GetString("store")
	serveCmdConfig.Strict = viper.GetBool("strict")
	serveCmdConfig.MaxEvents = viper.GetInt("max-events")
	serveCmdConfig.ReadBufferSize = viper.GetInt("read-buffer")
	serveCmdConfig.Backlog = viper.GetInt("backlog")
	serveCmdConfig.TickMillisecond = viper.GetInt("tick")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return serveCmdConfig.Validate()
}

// Run starts the server and blocks until SIGINT or SIGTERM is received.
// Transport failures are reported on stderr as "Fatal error: ...".
func Run(cmd *cobra.Command, _ []string) error {
	// from here on errors are runtime failures, not usage errors
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := serve()
	reportError(cmd.ErrOrStderr(), err)
	return err
}

// reportError prints err the way the command line reports runtime failures
func reportError(w io.Writer, err error) {
	switch {
	case err == nil:
	case base.IsFatal(err):
		fmt.Fprintf(w, "Fatal error: %v\n", err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func serve() error {
	s, err := newServer()
	if err != nil {
		return err
	}
	return runUntilSignal(s)
}

// newServer creates the server described by the processed configuration
func newServer() (*server.Server, error) {
	t, err := cmdUtil.GetTransport(serveCmdConfig.Transport)
	if err != nil {
		return nil, err
	}
	s, err := cmdUtil.GetStore(serveCmdConfig.Store)
	if err != nil {
		return nil, err
	}
	return server.NewServer(serveCmdConfig, t, s), nil
}

// runUntilSignal serves until SIGINT or SIGTERM is received
func runUntilSignal(s *server.Server) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Serve(ctx)
}
