//go:build linux

package sockaddr

import (
	"encoding/binary"
	"unsafe"

	"github.com/bassosimone/runtimex"
	"golang.org/x/sys/unix"
)

// Linux: sa_family_t is a host-order uint16 at offset 0.
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
	binary.NativeEndian.PutUint16(b[0:2], uint16(family))
}

func readFamily(b []byte) int {
	return int(binary.NativeEndian.Uint16(b[0:2]))
}
