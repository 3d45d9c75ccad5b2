//go:build linux

package epoll

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/transport"
	"github.com/ValentinKolb/minidb/rpc/transport/base"
)

// upper echoes every line in upper case
func upper(line []byte) []byte {
	return []byte(strings.ToUpper(string(line)) + "\n")
}

func testConfig() common.ServerConfig {
	c := common.DefaultServerConfig()
	c.Port = 0
	c.SnapshotPath = "unused"
	return c
}

// startReactor runs a transport in the background and returns its address
func startReactor(t *testing.T, config common.ServerConfig, handler transport.LineHandler) (net.Addr, context.CancelFunc, <-chan error) {
	t.Helper()

	tr := NewEpollServerTransport()
	tr.RegisterHandler(handler)

	ctx, cancel := context.WithCancel(context.Background())
	readyCh := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- tr.Listen(ctx, config, func(addr net.Addr) { readyCh <- addr })
	}()

	select {
	case addr := <-readyCh:
		return addr, cancel, errCh
	case err := <-errCh:
		cancel()
		t.Fatalf("transport failed to start: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatalf("transport did not become ready")
	}
	return nil, cancel, errCh
}

func TestEchoAndShutdown(t *testing.T) {
	addr, cancel, errCh := startReactor(t, testConfig(), upper)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("hello\nwor")); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write([]byte("ld\n")); err != nil {
		t.Fatal(err)
	}

	reader := bufio.NewReader(conn)
	for _, want := range []string{"HELLO\n", "WORLD\n"} {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		got, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Expected orderly shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("transport did not shut down")
	}

	// the connection is closed by the teardown
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := reader.ReadByte(); err == nil {
		t.Errorf("Expected closed connection after shutdown")
	} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
		t.Errorf("Expected closed connection after shutdown, read timed out")
	}
}

func TestBindsLoopbackOnly(t *testing.T) {
	addr, cancel, errCh := startReactor(t, testConfig(), upper)
	defer func() {
		cancel()
		<-errCh
	}()

	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		t.Fatalf("Expected *net.TCPAddr, got %T", addr)
	}
	if !tcpAddr.IP.IsLoopback() {
		t.Errorf("Expected loopback address, got %s", tcpAddr.IP)
	}
	if tcpAddr.Port == 0 {
		t.Errorf("Expected the kernel assigned port to be reported")
	}
}

func TestBindConflictIsFatal(t *testing.T) {
	addr, cancel, errCh := startReactor(t, testConfig(), upper)
	defer func() {
		cancel()
		<-errCh
	}()

	config := testConfig()
	config.Port = addr.(*net.TCPAddr).Port

	second := NewEpollServerTransport()
	second.RegisterHandler(upper)
	err := second.Listen(context.Background(), config, nil)

	var fe *base.FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *base.FatalError, got %v", err)
	}
	if fe.Op != "bind" {
		t.Errorf("Expected failing op bind, got %s", fe.Op)
	}
}

func TestManyConnectionsDrainedInOneAccept(t *testing.T) {
	addr, cancel, errCh := startReactor(t, testConfig(), upper)
	defer func() {
		cancel()
		<-errCh
	}()

	var conns []net.Conn
	for i := 0; i < 20; i++ {
		conn, err := net.Dial("tcp", addr.String())
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		if _, err := conn.Write([]byte("ping\n")); err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		got, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil || got != "PING\n" {
			t.Errorf("conn %d: got %q, %v", i, got, err)
		}
	}
}

func TestListenWithoutHandler(t *testing.T) {
	tr := NewEpollServerTransport()
	if err := tr.Listen(context.Background(), testConfig(), nil); err == nil {
		t.Errorf("Expected error when no handler is registered")
	}
}

func TestLinesBeforeCloseAreHandled(t *testing.T) {
	addr, cancel, errCh := startReactor(t, testConfig(), upper)
	defer func() {
		cancel()
		<-errCh
	}()

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("last words\npartial")); err != nil {
		t.Fatal(err)
	}
	if err := conn.(*net.TCPConn).CloseWrite(); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	reader := bufio.NewReader(conn)
	got, err := reader.ReadString('\n')
	if err != nil || got != "LAST WORDS\n" {
		t.Fatalf("Expected response to the complete line, got %q, %v", got, err)
	}

	// the unterminated remainder is discarded and the server closes the connection
	if _, err := reader.ReadByte(); err == nil {
		t.Errorf("Expected the server to close the connection")
	}
}

// resetConn closes conn with SO_LINGER 0 so the server sees ECONNRESET
func resetConn(t *testing.T, conn net.Conn) {
	t.Helper()
	if err := conn.(*net.TCPConn).SetLinger(0); err != nil {
		t.Fatal(err)
	}
	_ = conn.Close()
}

// roundTrip sends line and expects its upper case echo
func roundTrip(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	got, err := bufio.NewReader(conn).ReadString('\n')
	if want := strings.ToUpper(line) + "\n"; err != nil || got != want {
		t.Fatalf("Expected %q, got %q, %v", want, got, err)
	}
}

func TestConnectionErrorIsIsolated(t *testing.T) {
	addr, cancel, errCh := startReactor(t, testConfig(), upper)
	defer func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Expected orderly shutdown, got %v", err)
		}
	}()

	before := common.ConnectionErrors.Get()

	faulty, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, faulty, "hi")
	resetConn(t, faulty)

	deadline := time.Now().Add(5 * time.Second)
	for common.ConnectionErrors.Get() == before {
		if time.Now().After(deadline) {
			t.Fatalf("connection reset was not reported")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case err := <-errCh:
		t.Fatalf("transport stopped after a connection error: %v", err)
	default:
	}

	healthy, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer healthy.Close()
	roundTrip(t, healthy, "hi")
}

func TestConnectionErrorIsFatalInStrictMode(t *testing.T) {
	config := testConfig()
	config.Strict = true
	addr, cancel, errCh := startReactor(t, config, upper)
	defer cancel()

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, conn, "hi")
	resetConn(t, conn)

	select {
	case err := <-errCh:
		var fe *base.FatalError
		if !errors.As(err, &fe) {
			t.Fatalf("Expected *base.FatalError, got %v", err)
		}
		if fe.Op != "recv" {
			t.Errorf("Expected failing op recv, got %s", fe.Op)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("transport did not stop after a connection error")
	}
}
