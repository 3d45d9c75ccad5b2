package client

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/minidb/lib/command"
)

// fakeServer answers every request line with the next canned response
func fakeServer(t *testing.T, responses ...string) (*Client, <-chan string) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	requests := make(chan string, len(responses))

	go func() {
		defer serverConn.Close()
		reader := bufio.NewReader(serverConn)
		for _, resp := range responses {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			requests <- strings.TrimSuffix(line, "\n")
			if _, err := serverConn.Write([]byte(resp)); err != nil {
				return
			}
		}
	}()

	c := NewClient(clientConn, 5*time.Second)
	t.Cleanup(func() { _ = c.Close() })
	return c, requests
}

func TestOperations(t *testing.T) {
	c, requests := fakeServer(t, "0\n", "0 bar\n", "1\n", "0\n", "1\n")

	if err := c.Post("foo", "bar"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if v, ok, err := c.Get("foo"); err != nil || !ok || v != "bar" {
		t.Errorf("Get = %q, %v, %v", v, ok, err)
	}
	if _, ok, err := c.Get("missing"); err != nil || ok {
		t.Errorf("Expected missing key, got ok=%v err=%v", ok, err)
	}
	if deleted, err := c.Delete("foo"); err != nil || !deleted {
		t.Errorf("Delete = %v, %v", deleted, err)
	}
	if deleted, err := c.Delete("foo"); err != nil || deleted {
		t.Errorf("Expected second delete to report missing key, got %v, %v", deleted, err)
	}

	want := []string{"POST foo bar", "GET foo", "GET missing", "DELETE foo", "DELETE foo"}
	for i, w := range want {
		if got := <-requests; got != w {
			t.Errorf("request %d: sent %q, expected %q", i, got, w)
		}
	}
}

func TestInvalidCommand(t *testing.T) {
	c, _ := fakeServer(t, "2\n")

	if err := c.Post("a", "b"); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Expected ErrInvalidCommand, got %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	c, _ := fakeServer(t)

	if err := c.Post("a b", "c"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for key with space, got %v", err)
	}
	if err := c.Post("a", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for empty value, got %v", err)
	}
	if _, _, err := c.Get("tab\tkey"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for key with tab, got %v", err)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		in     string
		status command.Status
		value  string
		err    bool
	}{
		{"0", command.StatusOK, "", false},
		{"0 value", command.StatusOK, "value", false},
		{"1", command.StatusNotFound, "", false},
		{"2", command.StatusInvalid, "", false},
		{"", 0, "", true},
		{"OK", 0, "", true},
	}

	for _, tt := range tests {
		status, value, err := ParseResponse(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseResponse(%q) error = %v", tt.in, err)
			continue
		}
		if status != tt.status || value != tt.value {
			t.Errorf("ParseResponse(%q) = %d %q", tt.in, status, value)
		}
	}
}
