//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package sockaddr

import (
	"unsafe"

	"github.com/bassosimone/runtimex"
	"golang.org/x/sys/unix"
)

// BSD: a uint8 sa_len at offset 0 followed by a uint8 sa_family.
const (
	familyV4 = unix.AF_INET
	familyV6 = unix.AF_INET6
	sizeV4   = unix.SizeofSockaddrInet4
	sizeV6   = unix.SizeofSockaddrInet6
)

func init() {
	runtimex.Assert(sizeV4 == int(unsafe.Sizeof(unix.RawSockaddrInet4{})))
	runtimex.Assert(sizeV6 == int(unsafe.Sizeof(unix.RawSockaddrInet6{})))
}

func putHeader(b []byte, family int) {
	b[0] = byte(len(b))
	b[1] = byte(family)
}

func readFamily(b []byte) int {
	return int(b[1])
}
