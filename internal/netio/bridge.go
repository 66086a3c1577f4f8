//go:build linux

package netio

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sys/unix"

	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// DefaultBacklog is the listen(2) backlog. The echo server handles a
// single connection, so one pending connection is enough.
const DefaultBacklog = 1

// Syscall names used in errors, logs and metrics labels.
const (
	OpSocket      = "socket"
	OpBind        = "bind"
	OpListen      = "listen"
	OpAccept      = "accept"
	OpConnect     = "connect"
	OpGetsockname = "getsockname"
)

// MetricsReporter receives one observation per raw syscall made by a
// Bridge. err is nil on success.
type MetricsReporter interface {
	ObserveSyscall(op string, family Family, elapsed time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSyscall(string, Family, time.Duration, error) {}

// -------------------------------------------------------------------------
// Bridge — raw bind/listen/accept/connect
// -------------------------------------------------------------------------

// Bridge performs socket setup directly against the kernel, passing
// sockaddr records as raw bytes. All calls block and none retries; every
// failure is returned to the caller as a *SyscallError or a sentinel.
type Bridge struct {
	sys     Syscalls
	logger  *slog.Logger
	metrics MetricsReporter
	clock   clock.Clock
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithSyscalls replaces the OS syscall layer, for tests.
func WithSyscalls(sys Syscalls) Option {
	return func(b *Bridge) {
		if sys != nil {
			b.sys = sys
		}
	}
}

// WithLogger sets the logger. Syscall outcomes are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the MetricsReporter. If mr is nil, a no-op reporter
// is used.
func WithMetrics(mr MetricsReporter) Option {
	return func(b *Bridge) {
		if mr != nil {
			b.metrics = mr
		}
	}
}

// WithClock sets the clock used to time syscalls.
func WithClock(c clock.Clock) Option {
	return func(b *Bridge) {
		if c != nil {
			b.clock = c
		}
	}
}

// NewBridge returns a Bridge over OS() unless overridden by opts.
func NewBridge(opts ...Option) *Bridge {
	b := &Bridge{
		sys:     OS(),
		logger:  slog.New(slog.DiscardHandler),
		metrics: noopMetrics{},
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(slog.String("component", "netio.bridge"))
	return b
}

// Open creates a stream socket in family f whose protocol variant
// matches records of variant v.
func (b *Bridge) Open(f Family, v sockaddr.Variant) (*Handle, error) {
	domain, proto, err := f.socketParams(v)
	if err != nil {
		return nil, err
	}

	start := b.clock.Now()
	fd, err := b.sys.Socket(domain, unix.SOCK_STREAM, proto)
	b.observe(OpSocket, f, start, err)
	if err != nil {
		return nil, &SyscallError{Op: OpSocket, Kind: ErrSocketFailed, Err: err}
	}

	b.logger.Debug("socket created",
		slog.Int("fd", fd),
		slog.String("family", f.String()),
		slog.String("variant", v.String()),
		slog.Int("domain", domain),
		slog.Int("proto", proto),
	)

	return newHandle(fd, f, v, b.sys), nil
}

// BindRaw binds h to rec with a raw bind(2).
func (b *Bridge) BindRaw(h *Handle, rec sockaddr.Record) error {
	if err := checkVariant(OpBind, h, rec); err != nil {
		return err
	}

	start := b.clock.Now()
	err := b.sys.Bind(h.fd, sockaddr.Marshal(rec))
	b.observe(OpBind, h.family, start, err)
	if err != nil {
		return &SyscallError{Op: OpBind, Kind: ErrBindFailed, Record: rec, Err: err}
	}

	b.logger.Debug("socket bound", slog.Int("fd", h.fd), slog.String("addr", rec.String()))
	return nil
}

// ListenRaw marks h as passive with the given backlog.
func (b *Bridge) ListenRaw(h *Handle, backlog int) error {
	if h.isClosed() {
		return fmt.Errorf("%s: %w", OpListen, ErrHandleClosed)
	}

	start := b.clock.Now()
	err := b.sys.Listen(h.fd, backlog)
	b.observe(OpListen, h.family, start, err)
	if err != nil {
		return &SyscallError{Op: OpListen, Kind: ErrListenFailed, Err: err}
	}

	b.logger.Debug("socket listening", slog.Int("fd", h.fd), slog.Int("backlog", backlog))
	return nil
}

// AcceptRaw blocks until a peer connects to the listening handle h. It
// returns the connected handle, owned by the caller, and the peer
// address as filled in by the kernel. On any error no handle is
// returned.
func (b *Bridge) AcceptRaw(h *Handle) (*Handle, sockaddr.Record, error) {
	if h.isClosed() {
		return nil, nil, fmt.Errorf("%s: %w", OpAccept, ErrHandleClosed)
	}

	want := sockaddr.Size(h.variant)
	buf := make([]byte, want)

	start := b.clock.Now()
	nfd, n, err := b.sys.Accept(h.fd, buf)
	b.observe(OpAccept, h.family, start, err)
	if err != nil {
		return nil, nil, &SyscallError{Op: OpAccept, Kind: ErrAcceptFailed, Err: err}
	}

	conn := newHandle(nfd, h.family, h.variant, b.sys)

	if n != want {
		sizeErr := fmt.Errorf("%s: peer address of %d bytes, want %d for %s: %w",
			OpAccept, n, want, h.variant, ErrAddressSizeMismatch)
		return nil, nil, closeOnError(conn, sizeErr)
	}

	peer, err := sockaddr.Unmarshal(buf)
	if err != nil {
		return nil, nil, closeOnError(conn, fmt.Errorf("%s: decode peer address: %w", OpAccept, err))
	}

	b.logger.Debug("connection accepted",
		slog.Int("listen_fd", h.fd),
		slog.Int("fd", nfd),
		slog.String("peer", peer.String()),
	)

	return conn, peer, nil
}

// ConnectRaw connects h to rec with a raw connect(2).
func (b *Bridge) ConnectRaw(h *Handle, rec sockaddr.Record) error {
	if err := checkVariant(OpConnect, h, rec); err != nil {
		return err
	}

	start := b.clock.Now()
	err := b.sys.Connect(h.fd, sockaddr.Marshal(rec))
	b.observe(OpConnect, h.family, start, err)
	if err != nil {
		return &SyscallError{Op: OpConnect, Kind: ErrConnectFailed, Record: rec, Err: err}
	}

	b.logger.Debug("socket connected", slog.Int("fd", h.fd), slog.String("addr", rec.String()))
	return nil
}

// LocalRecord returns the address h is bound to, via raw getsockname(2).
func (b *Bridge) LocalRecord(h *Handle) (sockaddr.Record, error) {
	if h.isClosed() {
		return nil, fmt.Errorf("%s: %w", OpGetsockname, ErrHandleClosed)
	}

	want := sockaddr.Size(h.variant)
	buf := make([]byte, want)

	start := b.clock.Now()
	n, err := b.sys.Getsockname(h.fd, buf)
	b.observe(OpGetsockname, h.family, start, err)
	if err != nil {
		return nil, &SyscallError{Op: OpGetsockname, Kind: ErrGetsocknameFailed, Err: err}
	}
	if n != want {
		return nil, fmt.Errorf("%s: local address of %d bytes, want %d for %s: %w",
			OpGetsockname, n, want, h.variant, ErrAddressSizeMismatch)
	}

	return sockaddr.Unmarshal(buf)
}

func (b *Bridge) observe(op string, f Family, start time.Time, err error) {
	b.metrics.ObserveSyscall(op, f, b.clock.Since(start), err)
	if err != nil {
		b.logger.Debug("syscall failed",
			slog.String("op", op),
			slog.String("family", f.String()),
			slog.String("error", err.Error()),
		)
	}
}

// checkVariant fails fast when rec cannot be passed to h.
func checkVariant(op string, h *Handle, rec sockaddr.Record) error {
	if h.isClosed() {
		return fmt.Errorf("%s: %w", op, ErrHandleClosed)
	}
	if rec == nil {
		return fmt.Errorf("%s: nil address: %w", op, sockaddr.ErrInvalidAddress)
	}
	if rec.Variant() != h.variant {
		return fmt.Errorf("%s %s on %s %s handle: %w",
			op, rec, h.family, h.variant, ErrFamilyMismatch)
	}
	return nil
}

// closeOnError releases h and joins any close failure onto err.
func closeOnError(h *Handle, err error) error {
	if closeErr := h.Close(); closeErr != nil {
		return errors.Join(err, closeErr)
	}
	return err
}
