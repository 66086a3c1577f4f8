//go:build linux

package netio_test

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dantte-lp/smcecho/internal/netio"
)

// -------------------------------------------------------------------------
// fakeSyscalls — test double for netio.Syscalls
// -------------------------------------------------------------------------

// socketCall records a single Socket invocation.
type socketCall struct {
	Domain, Type, Proto int
}

// fakeSyscalls implements netio.Syscalls without touching the kernel.
// Each XxxFunc overrides the default behavior when set; every call is
// recorded.
type fakeSyscalls struct {
	mu     sync.Mutex
	nextFD int

	SocketFunc  func(domain, typ, proto int) (int, error)
	BindFunc    func(fd int, addr []byte) error
	ListenFunc  func(fd, backlog int) error
	AcceptFunc  func(fd int, addr []byte) (int, int, error)
	ConnectFunc func(fd int, addr []byte) error
	ReadFunc    func(fd int, p []byte) (int, error)
	WriteFunc   func(fd int, p []byte) (int, error)

	Sockets  []socketCall
	Bound    [][]byte
	Backlogs []int
	Accepts  int
	Connects [][]byte
	Closed   []int
}

var _ netio.Syscalls = (*fakeSyscalls)(nil)

func newFakeSyscalls() *fakeSyscalls {
	return &fakeSyscalls{nextFD: 10}
}

func (f *fakeSyscalls) allocFD() int {
	fd := f.nextFD
	f.nextFD++
	return fd
}

func (f *fakeSyscalls) Socket(domain, typ, proto int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Sockets = append(f.Sockets, socketCall{Domain: domain, Type: typ, Proto: proto})
	if f.SocketFunc != nil {
		return f.SocketFunc(domain, typ, proto)
	}
	return f.allocFD(), nil
}

func (f *fakeSyscalls) Bind(fd int, addr []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Bound = append(f.Bound, append([]byte(nil), addr...))
	if f.BindFunc != nil {
		return f.BindFunc(fd, addr)
	}
	return nil
}

func (f *fakeSyscalls) Listen(fd, backlog int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Backlogs = append(f.Backlogs, backlog)
	if f.ListenFunc != nil {
		return f.ListenFunc(fd, backlog)
	}
	return nil
}

func (f *fakeSyscalls) Accept(fd int, addr []byte) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Accepts++
	if f.AcceptFunc != nil {
		return f.AcceptFunc(fd, addr)
	}
	return -1, 0, unix.EAGAIN
}

func (f *fakeSyscalls) Connect(fd int, addr []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Connects = append(f.Connects, append([]byte(nil), addr...))
	if f.ConnectFunc != nil {
		return f.ConnectFunc(fd, addr)
	}
	return nil
}

func (f *fakeSyscalls) Getsockname(_ int, addr []byte) (int, error) {
	return len(addr), nil
}

func (f *fakeSyscalls) Read(fd int, p []byte) (int, error) {
	if f.ReadFunc != nil {
		return f.ReadFunc(fd, p)
	}
	return 0, nil
}

func (f *fakeSyscalls) Write(fd int, p []byte) (int, error) {
	if f.WriteFunc != nil {
		return f.WriteFunc(fd, p)
	}
	return len(p), nil
}

func (f *fakeSyscalls) Close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Closed = append(f.Closed, fd)
	return nil
}

// -------------------------------------------------------------------------
// recordingMetrics — test double for netio.MetricsReporter
// -------------------------------------------------------------------------

type observation struct {
	Op      string
	Family  netio.Family
	Elapsed time.Duration
	Err     error
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingMetrics) ObserveSyscall(op string, family netio.Family, elapsed time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{Op: op, Family: family, Elapsed: elapsed, Err: err})
}

func (r *recordingMetrics) observations() []observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observation(nil), r.obs...)
}
