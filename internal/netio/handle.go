//go:build linux

package netio

import (
	"fmt"
	"io"
	"sync"

	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// Handle is an exclusively owned socket descriptor: a fresh socket, a
// listening socket or a connected peer. It is released exactly once by
// Close; later calls are no-ops. A Handle is not meant for concurrent
// use beyond Close.
type Handle struct {
	fd      int
	family  Family
	variant sockaddr.Variant
	sys     Syscalls

	mu     sync.Mutex
	closed bool
}

var _ io.ReadWriteCloser = (*Handle)(nil)

func newHandle(fd int, family Family, variant sockaddr.Variant, sys Syscalls) *Handle {
	return &Handle{
		fd:      fd,
		family:  family,
		variant: variant,
		sys:     sys,
	}
}

// Fd returns the underlying descriptor. It stays owned by the Handle.
func (h *Handle) Fd() int { return h.fd }

// Family returns the transport family the socket was created in.
func (h *Handle) Family() Family { return h.family }

// Variant returns the address variant the socket accepts.
func (h *Handle) Variant() sockaddr.Variant { return h.variant }

// Read performs a single read(2). A zero-length read on a non-empty
// buffer means the peer closed the connection and is reported as io.EOF.
func (h *Handle) Read(p []byte) (int, error) {
	if h.isClosed() {
		return 0, ErrHandleClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err := h.sys.Read(h.fd, p)
	if err != nil {
		return 0, fmt.Errorf("read fd %d: %w", h.fd, err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes all of p, retrying on short writes.
func (h *Handle) Write(p []byte) (int, error) {
	if h.isClosed() {
		return 0, ErrHandleClosed
	}

	written := 0
	for written < len(p) {
		n, err := h.sys.Write(h.fd, p[written:])
		if err != nil {
			return written, fmt.Errorf("write fd %d: %w", h.fd, err)
		}
		if n <= 0 {
			return written, fmt.Errorf("write fd %d: %w", h.fd, io.ErrShortWrite)
		}
		written += n
	}
	return written, nil
}

// Close releases the descriptor. Only the first call reaches the OS.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if err := h.sys.Close(h.fd); err != nil {
		return fmt.Errorf("close fd %d: %w", h.fd, err)
	}
	return nil
}

func (h *Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
