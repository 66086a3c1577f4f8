package sockaddr

import (
	"fmt"
	"net/netip"
	"strconv"
)

// DefaultPort is the listen/connect port used when none is given.
const DefaultPort uint16 = 50000

// Role selects the default address substituted for an empty literal.
type Role uint8

const (
	// RoleServer listens; an empty address means "any".
	RoleServer Role = iota + 1

	// RoleClient connects; an empty address means loopback.
	RoleClient
)

// String returns "server", "client" or "unknown".
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// DefaultAddress returns the literal used for role when the caller
// supplies an empty address.
func DefaultAddress(role Role) string {
	if role == RoleServer {
		return "0.0.0.0"
	}
	return "127.0.0.1"
}

// Build resolves role defaults for empty address and port, then parses
// them into a Record. Defaults are substituted before parsing, so an
// empty address never reaches Parse.
func Build(role Role, address, port string) (Record, error) {
	if address == "" {
		address = DefaultAddress(role)
	}

	p := DefaultPort
	if port != "" {
		var err error
		if p, err = ParsePort(port); err != nil {
			return nil, err
		}
	}

	return Parse(address, p)
}

// ParsePort parses a decimal port number in the range 0..65535.
func ParsePort(text string) (uint16, error) {
	n, err := strconv.ParseUint(text, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("port %q: %w", text, ErrInvalidPort)
	}
	return uint16(n), nil
}

// Parse turns an address literal and a port into a Record. IPv4
// dotted-quad parsing is attempted first; if it fails the literal is
// parsed as IPv6. Zoned IPv6 literals are rejected because the record
// scope id is always zero.
func Parse(address string, port uint16) (Record, error) {
	if r, ok := parseV4(address, port); ok {
		return r, nil
	}
	if r, ok := parseV6(address, port); ok {
		return r, nil
	}
	return nil, fmt.Errorf("address %q: %w", address, ErrInvalidAddress)
}

func parseV4(address string, port uint16) (V4, bool) {
	addr, err := netip.ParseAddr(address)
	if err != nil || !addr.Is4() {
		return V4{}, false
	}
	return NewV4(addr.As4(), port), true
}

func parseV6(address string, port uint16) (V6, bool) {
	addr, err := netip.ParseAddr(address)
	if err != nil || !addr.Is6() || addr.Zone() != "" {
		return V6{}, false
	}
	return NewV6(addr.As16(), port), true
}
