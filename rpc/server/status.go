package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/goccy/go-json"
)

// Info is the document served under /info
type Info struct {
	Transport         string  `json:"transport"`
	Store             string  `json:"store"`
	Address           string  `json:"address"`
	Snapshot          string  `json:"snapshot"`
	Keys              int64   `json:"keys"`
	ActiveConnections int64   `json:"active_connections"`
	Commands          uint64  `json:"commands"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// Info returns a point in time view of the server.
// It only reads atomic counters and may be called from any goroutine.
func (s *Server) Info() Info {
	info := Info{
		Transport:         s.transport.GetName(),
		Store:             s.config.Store,
		Address:           s.config.Address(),
		Snapshot:          s.config.SnapshotPath,
		Keys:              common.StoredKeys(),
		ActiveConnections: common.ActiveConnections(),
		Commands:          s.commands.Load(),
	}
	if addr := s.Addr(); addr != nil {
		info.Address = addr.String()
	}
	if !s.started.IsZero() {
		info.UptimeSeconds = time.Since(s.started).Seconds()
	}
	return info
}

// statusHandler serves /metrics (Prometheus text format) and /info (JSON)
func (s *Server) statusHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.Info()); err != nil {
			Logger.Errorf("failed to encode info: %v", err)
		}
	})
	return mux
}

// startStatusListener serves the status endpoints on config.MetricsEndpoint in the
// background. The returned function stops the listener.
func (s *Server) startStatusListener() (func(), error) {
	ln, err := net.Listen("tcp", s.config.MetricsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to start metrics listener: %w", err)
	}

	srv := &http.Server{
		Handler:           s.statusHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics listener failed: %v", err)
		}
	}()
	Logger.Infof("serving metrics on http://%s/metrics", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
