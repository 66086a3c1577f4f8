package sockaddr

import (
	"errors"
	"net/netip"
)

// -------------------------------------------------------------------------
// Variant — tag of the address record union
// -------------------------------------------------------------------------

// Variant identifies which address family a Record carries.
type Variant uint8

const (
	// VariantV4 tags an IPv4 record (struct sockaddr_in).
	VariantV4 Variant = iota + 1

	// VariantV6 tags an IPv6 record (struct sockaddr_in6).
	VariantV6
)

// String returns "v4", "v6" or "unknown".
func (v Variant) String() string {
	switch v {
	case VariantV4:
		return "v4"
	case VariantV6:
		return "v6"
	default:
		return "unknown"
	}
}

// -------------------------------------------------------------------------
// Sentinel Errors
// -------------------------------------------------------------------------

var (
	// ErrInvalidAddress indicates the literal is neither an IPv4 dotted-quad
	// nor an IPv6 literal.
	ErrInvalidAddress = errors.New("invalid address literal")

	// ErrInvalidPort indicates the port text is not a decimal in 0..65535.
	ErrInvalidPort = errors.New("invalid port")

	// ErrAddressSize indicates a serialized record has the wrong length
	// for its family.
	ErrAddressSize = errors.New("socket address size mismatch")

	// ErrUnknownFamily indicates a serialized record carries a family tag
	// other than AF_INET or AF_INET6.
	ErrUnknownFamily = errors.New("unknown socket address family")
)

// -------------------------------------------------------------------------
// Record — sum type over V4 and V6
// -------------------------------------------------------------------------

// Record is an immutable socket endpoint. The only implementations are
// V4 and V6; switch on Variant (or on the concrete type) to pick
// family-specific behavior.
type Record interface {
	// Variant returns the union tag.
	Variant() Variant

	// Addr returns the IP address. V6 records keep IPv4-mapped
	// addresses in their 16-byte form.
	Addr() netip.Addr

	// Port returns the port in host byte order.
	Port() uint16

	// AddrPort returns Addr and Port combined.
	AddrPort() netip.AddrPort

	// String formats the endpoint as "addr:port" or "[addr]:port".
	String() string

	sealed()
}

// V4 is the IPv4 variant of Record.
type V4 struct {
	addr [4]byte
	port uint16
}

// NewV4 returns a V4 record for addr and port.
func NewV4(addr [4]byte, port uint16) V4 {
	return V4{addr: addr, port: port}
}

// Variant implements Record.
func (V4) Variant() Variant { return VariantV4 }

// Addr implements Record.
func (r V4) Addr() netip.Addr { return netip.AddrFrom4(r.addr) }

// Port implements Record.
func (r V4) Port() uint16 { return r.port }

// AddrPort implements Record.
func (r V4) AddrPort() netip.AddrPort { return netip.AddrPortFrom(r.Addr(), r.port) }

// String implements Record.
func (r V4) String() string { return r.AddrPort().String() }

func (V4) sealed() {}

// V6 is the IPv6 variant of Record.
type V6 struct {
	addr     [16]byte
	port     uint16
	flowInfo uint32
	scopeID  uint32
}

// NewV6 returns a V6 record for addr and port with zero flow info and
// zero scope id.
func NewV6(addr [16]byte, port uint16) V6 {
	return V6{addr: addr, port: port}
}

// Variant implements Record.
func (V6) Variant() Variant { return VariantV6 }

// Addr implements Record.
func (r V6) Addr() netip.Addr { return netip.AddrFrom16(r.addr) }

// Port implements Record.
func (r V6) Port() uint16 { return r.port }

// AddrPort implements Record.
func (r V6) AddrPort() netip.AddrPort { return netip.AddrPortFrom(r.Addr(), r.port) }

// String implements Record.
func (r V6) String() string { return r.AddrPort().String() }

// FlowInfo returns sin6_flowinfo as filled in by the kernel (zero for
// records built by Parse).
func (r V6) FlowInfo() uint32 { return r.flowInfo }

// ScopeID returns sin6_scope_id as filled in by the kernel (zero for
// records built by Parse).
func (r V6) ScopeID() uint32 { return r.scopeID }

func (V6) sealed() {}

// Format returns the textual address and the port of r. It is the
// inverse of Parse: Format(Parse(l, p)) yields l (in canonical form)
// and p.
func Format(r Record) (string, uint16) {
	return r.Addr().String(), r.Port()
}
