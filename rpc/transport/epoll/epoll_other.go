//go:build !linux

package epoll

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/transport"
)

type unsupported struct{}

// NewEpollServerTransport returns a transport that fails on Listen, because epoll
// is only available on Linux. Use the evio transport on other platforms.
func NewEpollServerTransport() transport.IServerTransport {
	return &unsupported{}
}

func (u *unsupported) GetName() string {
	return "epoll"
}

func (u *unsupported) RegisterHandler(transport.LineHandler) {}

func (u *unsupported) Listen(context.Context, common.ServerConfig, transport.ReadyFunc) error {
	return fmt.Errorf("epoll transport is not supported on %s, use the evio transport", runtime.GOOS)
}
