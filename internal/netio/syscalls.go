//go:build linux

package netio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Syscalls is the narrow OS surface used by Bridge and Handle. Address
// arguments are native sockaddr bytes produced by sockaddr.Marshal; the
// implementation hands them to the kernel unchanged. Errors are
// unix.Errno values as reported by the failing call.
//
// The interface exists so tests can inject OS failures without
// privileges or kernel support.
type Syscalls interface {
	Socket(domain, typ, proto int) (fd int, err error)
	Bind(fd int, addr []byte) error
	Listen(fd, backlog int) error
	// Accept fills addr with the peer address and returns the new
	// descriptor and the address length reported by the kernel.
	Accept(fd int, addr []byte) (nfd, addrLen int, err error)
	Connect(fd int, addr []byte) error
	Getsockname(fd int, addr []byte) (addrLen int, err error)
	Read(fd int, p []byte) (int, error)
	Write(fd int, p []byte) (int, error)
	Close(fd int) error
}

// rawSyscalls invokes bind/accept4/connect/getsockname through
// unix.Syscall so the record bytes reach the kernel verbatim, without a
// round trip through unix.Sockaddr.
type rawSyscalls struct{}

// osSyscalls is the process-wide Syscalls instance. It is stateless and
// never mutated after package initialization.
var osSyscalls Syscalls = rawSyscalls{}

// OS returns the process-wide Syscalls backed by the running kernel.
func OS() Syscalls {
	return osSyscalls
}

func (rawSyscalls) Socket(domain, typ, proto int) (int, error) {
	return unix.Socket(domain, typ|unix.SOCK_CLOEXEC, proto)
}

func (rawSyscalls) Bind(fd int, addr []byte) error {
	if len(addr) == 0 {
		return unix.EINVAL
	}
	_, _, errno := unix.Syscall(
		unix.SYS_BIND,
		uintptr(fd),
		uintptr(unsafe.Pointer(&addr[0])),
		uintptr(len(addr)),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func (rawSyscalls) Listen(fd, backlog int) error {
	return unix.Listen(fd, backlog)
}

func (rawSyscalls) Accept(fd int, addr []byte) (int, int, error) {
	if len(addr) == 0 {
		return -1, 0, unix.EINVAL
	}
	//nolint:gosec // G115: sockaddr buffers are at most 28 bytes.
	addrLen := uint32(len(addr))
	nfd, _, errno := unix.Syscall6(
		unix.SYS_ACCEPT4,
		uintptr(fd),
		uintptr(unsafe.Pointer(&addr[0])),
		uintptr(unsafe.Pointer(&addrLen)),
		unix.SOCK_CLOEXEC,
		0, 0,
	)
	if errno != 0 {
		return -1, 0, errno
	}
	return int(nfd), int(addrLen), nil
}

func (rawSyscalls) Connect(fd int, addr []byte) error {
	if len(addr) == 0 {
		return unix.EINVAL
	}
	_, _, errno := unix.Syscall(
		unix.SYS_CONNECT,
		uintptr(fd),
		uintptr(unsafe.Pointer(&addr[0])),
		uintptr(len(addr)),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func (rawSyscalls) Getsockname(fd int, addr []byte) (int, error) {
	if len(addr) == 0 {
		return 0, unix.EINVAL
	}
	//nolint:gosec // G115: sockaddr buffers are at most 28 bytes.
	addrLen := uint32(len(addr))
	_, _, errno := unix.RawSyscall(
		unix.SYS_GETSOCKNAME,
		uintptr(fd),
		uintptr(unsafe.Pointer(&addr[0])),
		uintptr(unsafe.Pointer(&addrLen)),
	)
	if errno != 0 {
		return 0, errno
	}
	return int(addrLen), nil
}

func (rawSyscalls) Read(fd int, p []byte) (int, error) {
	return unix.Read(fd, p)
}

func (rawSyscalls) Write(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}

func (rawSyscalls) Close(fd int) error {
	return unix.Close(fd)
}
