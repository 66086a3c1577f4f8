//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package sockaddr

import (
	"encoding/binary"
	"fmt"

	"github.com/bassosimone/runtimex"
)

// Byte offsets shared by the Linux and BSD layouts. Only the first two
// bytes (family header) differ between them; see putHeader/readFamily.
//
//	sockaddr_in:  hdr[0:2] port[2:4] addr[4:8]  zero[8:16]
//	sockaddr_in6: hdr[0:2] port[2:4] flow[4:8]  addr[8:24] scope[24:28]
const (
	offPort     = 2
	offV4Addr   = 4
	offFlowInfo = 4
	offV6Addr   = 8
	offScopeID  = 24
)

// Size returns the native socket address size for v, or 0 for an
// unknown variant.
func Size(v Variant) int {
	switch v {
	case VariantV4:
		return sizeV4
	case VariantV6:
		return sizeV6
	default:
		return 0
	}
}

// Marshal serializes r into the host's native sockaddr layout. The
// returned slice has exactly Size(r.Variant()) bytes.
func Marshal(r Record) []byte {
	switch rec := r.(type) {
	case V4:
		b := make([]byte, sizeV4)
		putHeader(b, familyV4)
		binary.BigEndian.PutUint16(b[offPort:], rec.port)
		copy(b[offV4Addr:offV4Addr+4], rec.addr[:])
		return b
	case V6:
		b := make([]byte, sizeV6)
		putHeader(b, familyV6)
		binary.BigEndian.PutUint16(b[offPort:], rec.port)
		binary.BigEndian.PutUint32(b[offFlowInfo:], rec.flowInfo)
		copy(b[offV6Addr:offV6Addr+16], rec.addr[:])
		binary.NativeEndian.PutUint32(b[offScopeID:], rec.scopeID)
		return b
	default:
		runtimex.Assert(false)
		return nil
	}
}

// Unmarshal decodes a native sockaddr as filled in by the kernel. The
// family tag selects the variant; b must be exactly the native size of
// that family.
func Unmarshal(b []byte) (Record, error) {
	if len(b) < offPort {
		return nil, fmt.Errorf("%d bytes: %w", len(b), ErrAddressSize)
	}

	switch family := readFamily(b); family {
	case familyV4:
		if len(b) != sizeV4 {
			return nil, fmt.Errorf("v4 record of %d bytes, want %d: %w", len(b), sizeV4, ErrAddressSize)
		}
		var rec V4
		rec.port = binary.BigEndian.Uint16(b[offPort:])
		copy(rec.addr[:], b[offV4Addr:offV4Addr+4])
		return rec, nil
	case familyV6:
		if len(b) != sizeV6 {
			return nil, fmt.Errorf("v6 record of %d bytes, want %d: %w", len(b), sizeV6, ErrAddressSize)
		}
		var rec V6
		rec.port = binary.BigEndian.Uint16(b[offPort:])
		rec.flowInfo = binary.BigEndian.Uint32(b[offFlowInfo:])
		copy(rec.addr[:], b[offV6Addr:offV6Addr+16])
		rec.scopeID = binary.NativeEndian.Uint32(b[offScopeID:])
		return rec, nil
	default:
		return nil, fmt.Errorf("family %d: %w", family, ErrUnknownFamily)
	}
}
