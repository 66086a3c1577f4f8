//go:build linux

package netio

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// -------------------------------------------------------------------------
// Sentinel Errors
// -------------------------------------------------------------------------

var (
	// ErrSocketFailed indicates socket(2) rejected the family/protocol pair,
	// typically because the smc kernel module is not loaded.
	ErrSocketFailed = errors.New("socket creation failed")

	// ErrBindFailed indicates the raw bind(2) call failed.
	ErrBindFailed = errors.New("bind failed")

	// ErrListenFailed indicates the raw listen(2) call failed.
	ErrListenFailed = errors.New("listen failed")

	// ErrAcceptFailed indicates the raw accept4(2) call failed.
	ErrAcceptFailed = errors.New("accept failed")

	// ErrConnectFailed indicates the raw connect(2) call failed.
	ErrConnectFailed = errors.New("connect failed")

	// ErrGetsocknameFailed indicates the raw getsockname(2) call failed.
	ErrGetsocknameFailed = errors.New("getsockname failed")

	// ErrFamilyMismatch indicates a record variant that does not match the
	// protocol variant the handle was created with. No syscall is made.
	ErrFamilyMismatch = errors.New("address family mismatch")

	// ErrAddressSizeMismatch indicates the kernel reported a peer address
	// length different from the native size for the handle's family.
	ErrAddressSizeMismatch = errors.New("address size mismatch")

	// ErrHandleClosed indicates an operation on a released handle.
	ErrHandleClosed = errors.New("handle closed")

	// ErrUnknownFamily indicates an unrecognized transport family name.
	ErrUnknownFamily = errors.New("unknown transport family")
)

// -------------------------------------------------------------------------
// SyscallError
// -------------------------------------------------------------------------

// SyscallError reports a failed raw syscall. It matches both its Kind
// sentinel and the underlying OS error with errors.Is, e.g.
//
//	errors.Is(err, netio.ErrConnectFailed)
//	errors.Is(err, unix.ECONNREFUSED)
type SyscallError struct {
	// Op is the syscall name: "socket", "bind", "listen", "accept",
	// "connect" or "getsockname".
	Op string

	// Kind is one of the ErrXxxFailed sentinels.
	Kind error

	// Record is the address passed to the call, nil for calls without one.
	Record sockaddr.Record

	// Err is the error returned by the OS, normally a unix.Errno.
	Err error
}

// Error formats as "<op> [<addr>]: <kind>: <os error>".
func (e *SyscallError) Error() string {
	if e.Record != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Record, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the Kind sentinel and the OS error.
func (e *SyscallError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Errno returns the OS error code, or 0 when Err carries none.
func (e *SyscallError) Errno() unix.Errno {
	var errno unix.Errno
	if errors.As(e.Err, &errno) {
		return errno
	}
	return 0
}
