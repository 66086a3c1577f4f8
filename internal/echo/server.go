//go:build linux

package echo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"

	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// SessionReporter receives per-session observations.
type SessionReporter interface {
	SessionStarted(family netio.Family)
	BytesEchoed(family netio.Family, n int64)
}

type noopReporter struct{}

func (noopReporter) SessionStarted(netio.Family) {}
func (noopReporter) BytesEchoed(netio.Family, int64) {}

// NewSessionID returns a UUIDv7 identifying one accepted connection in
// logs. It panics only if the system random source fails.
func NewSessionID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}

// -------------------------------------------------------------------------
// Server
// -------------------------------------------------------------------------

// ServerConfig describes a single-connection echo server.
type ServerConfig struct {
	// Family is the transport family to listen in.
	Family netio.Family

	// Address is the local endpoint to bind.
	Address sockaddr.Record

	// BufSize is the read chunk size. Zero means DefaultBufSize.
	BufSize int

	// Ready, when set, is called once the socket listens, with the bound
	// address as reported by the kernel.
	Ready func(local sockaddr.Record)
}

// ServerResult describes a completed session.
type ServerResult struct {
	SessionID string
	Local     sockaddr.Record
	Peer      sockaddr.Record
	Stats     Stats
}

// Server accepts one connection and echoes it until the peer closes.
type Server struct {
	cfg     ServerConfig
	bridge  *netio.Bridge
	logger  *slog.Logger
	metrics SessionReporter
}

// NewServer returns a Server. metrics may be nil.
func NewServer(cfg ServerConfig, bridge *netio.Bridge, logger *slog.Logger, metrics SessionReporter) *Server {
	if metrics == nil {
		metrics = noopReporter{}
	}
	return &Server{
		cfg:     cfg,
		bridge:  bridge,
		metrics: metrics,
		logger: logger.With(
			slog.String("component", "echo.server"),
			slog.String("family", cfg.Family.String()),
		),
	}
}

// Run binds, listens, accepts a single connection and serves it. Both
// the listening and the connected handle are released before Run
// returns, on every path.
func (s *Server) Run() (res ServerResult, err error) {
	ln, err := s.bridge.Listen(s.cfg.Family, s.cfg.Address)
	if err != nil {
		return res, fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	defer func() {
		if closeErr := ln.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	local, err := s.bridge.LocalRecord(ln)
	if err != nil {
		return res, fmt.Errorf("query listen address: %w", err)
	}
	res.Local = local

	s.logger.Info("server listening", slog.String("addr", local.String()))
	if s.cfg.Ready != nil {
		s.cfg.Ready(local)
	}

	conn, peer, err := s.bridge.AcceptRaw(ln)
	if err != nil {
		return res, fmt.Errorf("accept on %s: %w", local, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	res.SessionID = NewSessionID()
	res.Peer = peer
	s.metrics.SessionStarted(s.cfg.Family)

	logger := s.logger.With(slog.String("session_id", res.SessionID))
	logger.Info("client connected", slog.String("peer", peer.String()))

	stats, err := Serve(conn, s.cfg.BufSize, logger)
	res.Stats = stats
	s.metrics.BytesEchoed(s.cfg.Family, stats.Bytes)
	if err != nil {
		return res, fmt.Errorf("session %s with %s: %w", res.SessionID, peer, err)
	}

	logger.Info("client disconnected",
		slog.Int("chunks", stats.Chunks),
		slog.Int64("bytes", stats.Bytes),
	)
	return res, nil
}
