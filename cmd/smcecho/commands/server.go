//go:build linux

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dantte-lp/smcecho/internal/config"
	"github.com/dantte-lp/smcecho/internal/echo"
	smcmetrics "github.com/dantte-lp/smcecho/internal/metrics"
	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

const (
	// shutdownTimeout bounds the metrics server drain after the session.
	shutdownTimeout = 5 * time.Second

	// readHeaderTimeout guards the metrics endpoint against slow clients.
	readHeaderTimeout = 10 * time.Second
)

// serverKeys maps server-only flags to configuration keys.
var serverKeys = config.FlagKeys{
	"bufsize":      "server.bufsize",
	"metrics-addr": "metrics.addr",
	"metrics-path": "metrics.path",
}

func serverCmd(g *globalOptions) *cobra.Command {
	var (
		address, port string
		bufSize       int
		metricsAddr   string
		metricsPath   string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Accept one connection and echo it until the peer closes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServerCmd(cmd, g)
		},
	}

	f := cmd.Flags()
	addEndpointFlags(f, &address, &port)
	f.IntVar(&bufSize, "bufsize", echo.DefaultBufSize, "echo read size in bytes")
	f.StringVar(&metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (empty disables)")
	f.StringVar(&metricsPath, "metrics-path", "/metrics", "Prometheus metrics URL path")

	return cmd
}

func runServerCmd(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(cmd, g, sockaddr.RoleServer, serverKeys)
	if err != nil {
		return err
	}

	family, rec, err := endpoint(cfg, sockaddr.RoleServer)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	collector := smcmetrics.NewCollector(reg)
	bridge := netio.NewBridge(
		netio.WithLogger(logger),
		netio.WithMetrics(collector),
	)

	out := cmd.OutOrStdout()
	srv := echo.NewServer(echo.ServerConfig{
		Family:  family,
		Address: rec,
		BufSize: cfg.Server.BufSize,
		Ready: func(local sockaddr.Record) {
			fmt.Fprintf(out, "Listening on %s (%s)\n", local, family)
			notifyReady(logger)
		},
	}, bridge, logger, collector)

	res, err := runSession(cmd.Context(), srv, cfg.Metrics, reg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Connected: %s\n", res.Peer)
	fmt.Fprintf(out, "Echoed %d bytes in %d chunks\n", res.Stats.Bytes, res.Stats.Chunks)
	return nil
}

// runSession runs the echo session and, if configured, the metrics
// endpoint in one errgroup. The metrics server is shut down once the
// session ends. The session itself is not cancellable: raw accept and
// read block until the peer acts or the process is signalled.
func runSession(
	ctx context.Context,
	srv *echo.Server,
	cfg config.MetricsConfig,
	reg *prometheus.Registry,
	logger *slog.Logger,
) (echo.ServerResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// The metrics listener is bound before the session starts so that a
	// bad metrics.addr fails fast instead of behind a blocking accept.
	if cfg.Addr != "" {
		lc := net.ListenConfig{}
		ln, err := lc.Listen(ctx, "tcp", cfg.Addr)
		if err != nil {
			return echo.ServerResult{}, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
		}
		metricsSrv := newMetricsServer(cfg, reg)

		g.Go(func() error {
			logger.Info("metrics server listening",
				slog.String("addr", ln.Addr().String()),
				slog.String("path", cfg.Path),
			)
			return serve(metricsSrv, ln)
		})

		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(gCtx), shutdownTimeout)
			defer stop()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown metrics server: %w", err)
			}
			return nil
		})
	}

	var res echo.ServerResult
	g.Go(func() error {
		defer cancel()

		var err error
		res, err = srv.Run()
		notifyStopping(logger)
		return err
	})

	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// serve runs srv on ln until the server is shut down.
func serve(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", ln.Addr(), err)
	}
	return nil
}

// newMetricsServer creates an HTTP server for the Prometheus metrics endpoint.
func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// notifyReady sends READY=1 to systemd once the socket listens.
func notifyReady(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("failed to notify systemd readiness",
			slog.String("error", err.Error()),
		)
		return
	}
	if sent {
		logger.Info("notified systemd: READY")
	}
}

// notifyStopping sends STOPPING=1 to systemd after the session ends.
func notifyStopping(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Warn("failed to notify systemd stopping",
			slog.String("error", err.Error()),
		)
		return
	}
	if sent {
		logger.Info("notified systemd: STOPPING")
	}
}
