package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/minidb/lib/command"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("client")

var (
	// ErrInvalidCommand is returned when the server answers with status 2
	ErrInvalidCommand = errors.New("server rejected the command as invalid")
	// ErrInvalidArgument is returned for keys or values the protocol cannot transport
	ErrInvalidArgument = errors.New("keys and values must be non-empty and must not contain whitespace")
)

// Client is a connection to a miniDB server speaking the line protocol.
// All methods are safe for concurrent use; requests are serialized on the connection.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	mu      sync.Mutex
}

// Dial connects to the server at config.Endpoint
func Dial(config common.ClientConfig) (*Client, error) {
	dialer := net.Dialer{Timeout: config.Timeout()}
	conn, err := dialer.Dial("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", config.Endpoint, err)
	}
	Logger.Debugf("connected to %s", config.Endpoint)
	return NewClient(conn, config.Timeout()), nil
}

// NewClient wraps an established connection. A timeout of 0 disables deadlines.
func NewClient(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// --------------------------------------------------------------------------
// Protocol Operations
// --------------------------------------------------------------------------

// Post inserts or updates a key–value pair
func (c *Client) Post(key, value string) error {
	if !validToken(key) || !validToken(value) {
		return ErrInvalidArgument
	}
	status, _, err := c.request(string(command.VerbPost) + " " + key + " " + value)
	if err != nil {
		return err
	}
	return expect(status, command.StatusOK)
}

// Get returns the value for a key. The boolean return value indicates whether the key exists.
func (c *Client) Get(key string) (string, bool, error) {
	if !validToken(key) {
		return "", false, ErrInvalidArgument
	}
	status, value, err := c.request(string(command.VerbGet) + " " + key)
	if err != nil {
		return "", false, err
	}
	switch status {
	case command.StatusOK:
		return value, true, nil
	case command.StatusNotFound:
		return "", false, nil
	default:
		return "", false, expect(status, command.StatusOK)
	}
}

// Delete removes a key. The boolean return value indicates whether the key existed.
func (c *Client) Delete(key string) (bool, error) {
	if !validToken(key) {
		return false, ErrInvalidArgument
	}
	status, _, err := c.request(string(command.VerbDelete) + " " + key)
	if err != nil {
		return false, err
	}
	switch status {
	case command.StatusOK:
		return true, nil
	case command.StatusNotFound:
		return false, nil
	default:
		return false, expect(status, command.StatusOK)
	}
}

// Do sends a raw line and returns the raw response line (without the newline)
func (c *Client) Do(line string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return strings.TrimSuffix(resp, "\n"), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// request sends a line and parses the status and optional value of the response
func (c *Client) request(line string) (command.Status, string, error) {
	resp, err := c.Do(line)
	if err != nil {
		return 0, "", err
	}
	return ParseResponse(resp)
}

// ParseResponse splits a response line into its status and optional value
func ParseResponse(resp string) (command.Status, string, error) {
	code, value, _ := strings.Cut(resp, " ")
	switch code {
	case "0":
		return command.StatusOK, value, nil
	case "1":
		return command.StatusNotFound, "", nil
	case "2":
		return command.StatusInvalid, "", nil
	default:
		return 0, "", fmt.Errorf("unexpected response %q", resp)
	}
}

func expect(got, want command.Status) error {
	if got == want {
		return nil
	}
	if got == command.StatusInvalid {
		return ErrInvalidCommand
	}
	return fmt.Errorf("unexpected status %d (%s), expected %d", got, got, want)
}

func validToken(s string) bool {
	return s != "" && len(command.Tokenize(s)) == 1 && command.Tokenize(s)[0] == s
}
