//go:build linux

package server

import (
	"github.com/ValentinKolb/minidb/rpc/transport"
	"github.com/ValentinKolb/minidb/rpc/transport/epoll"
	"github.com/ValentinKolb/minidb/rpc/transport/evio"
)

func testTransports() map[string]func() transport.IServerTransport {
	return map[string]func() transport.IServerTransport{
		"epoll": epoll.NewEpollServerTransport,
		"evio":  evio.NewEvioServerTransport,
	}
}
