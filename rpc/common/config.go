package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultHost            = "127.0.0.1"
	DefaultMaxEvents       = 64
	DefaultReadBufferSize  = 1024
	DefaultBacklog         = 128
	DefaultTickMillisecond = 50
)

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of a miniDB server.
type ServerConfig struct {
	// Host is the address the listener binds to (loopback only by default)
	Host string
	// Port is the TCP port to listen on (0 = pick a free port)
	Port int
	// SnapshotPath is the file the store is loaded from and saved to
	SnapshotPath string

	// Transport selects the event loop implementation (epoll, evio)
	Transport string
	// Store selects the store implementation (map, xsync)
	Store string

	// Strict makes any unexpected socket error on a client connection fatal for
	// the whole process. When false the faulty connection is closed and the server continues.
	Strict bool

	// event loop tuning
	MaxEvents       int // max readiness events per wait
	ReadBufferSize  int // size of the receive buffer in bytes
	Backlog         int // listen backlog
	TickMillisecond int // shutdown poll interval for transports without wake-up support

	// MetricsEndpoint is the address of the optional metrics/status HTTP listener ("" = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// DefaultServerConfig returns a configuration with all tuning values set
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            DefaultHost,
		Transport:       "epoll",
		Store:           "map",
		MaxEvents:       DefaultMaxEvents,
		ReadBufferSize:  DefaultReadBufferSize,
		Backlog:         DefaultBacklog,
		TickMillisecond: DefaultTickMillisecond,
		LogLevel:        "info",
	}
}

// Address returns the host:port the server listens on
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Tick returns the shutdown poll interval
func (c *ServerConfig) Tick() time.Duration {
	if c.TickMillisecond <= 0 {
		return DefaultTickMillisecond * time.Millisecond
	}
	return time.Duration(c.TickMillisecond) * time.Millisecond
}

// Validate checks the configuration for values the server cannot work with
func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d (expected 0-65535)", c.Port)
	}
	if c.SnapshotPath == "" {
		return fmt.Errorf("snapshot path must not be empty")
	}
	if ip := net.ParseIP(c.Host); ip == nil || ip.To4() == nil {
		return fmt.Errorf("invalid host %q (expected an IPv4 address)", c.Host)
	}
	if c.MaxEvents <= 0 {
		return fmt.Errorf("max events must be positive, got %d", c.MaxEvents)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("read buffer size must be positive, got %d", c.ReadBufferSize)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Server")
	addField("Address", c.Address())
	addField("Transport", c.Transport)
	addField("Strict", fmt.Sprintf("%t", c.Strict))

	addSection("Event Loop")
	addField("Max Events", strconv.Itoa(c.MaxEvents))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.ReadBufferSize))
	addField("Backlog", strconv.Itoa(c.Backlog))

	addSection("Storage")
	addField("Store", c.Store)
	addField("Snapshot", c.SnapshotPath)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoint      string
	TimeoutSecond int
}

// Timeout returns the per-request timeout (0 = none)
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder
	sb.WriteString("\nCLIENT CONFIGURATION\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Endpoint", c.Endpoint))
	sb.WriteString(fmt.Sprintf("  %-22s: %d sec\n", "Timeout", c.TimeoutSecond))
	return sb.String()
}
