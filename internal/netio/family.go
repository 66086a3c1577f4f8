//go:build linux

package netio

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// SMC protocol numbers for socket(AF_SMC, SOCK_STREAM, proto). The
// protocol selects which inet address layout the socket accepts.
const (
	// ProtoSMC is SMCPROTO_SMC: the socket takes struct sockaddr_in.
	ProtoSMC = 0

	// ProtoSMC6 is SMCPROTO_SMC6: the socket takes struct sockaddr_in6.
	ProtoSMC6 = 1
)

// Family is the transport family a Handle is created in.
type Family uint8

const (
	// FamilySMC creates AF_SMC sockets (Shared Memory Communications).
	FamilySMC Family = iota + 1

	// FamilyTCP creates plain AF_INET/AF_INET6 stream sockets. It runs
	// through the same raw bridge and serves as a control path.
	FamilyTCP
)

// ParseFamily maps "smc" or "tcp" (case-insensitive) to a Family.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(name) {
	case "smc":
		return FamilySMC, nil
	case "tcp":
		return FamilyTCP, nil
	default:
		return 0, fmt.Errorf("family %q: %w", name, ErrUnknownFamily)
	}
}

// String returns "smc", "tcp" or "unknown".
func (f Family) String() string {
	switch f {
	case FamilySMC:
		return "smc"
	case FamilyTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// socketParams returns the socket(2) domain and protocol for creating a
// socket of family f that accepts records of variant v.
func (f Family) socketParams(v sockaddr.Variant) (domain, proto int, err error) {
	switch f {
	case FamilySMC:
		switch v {
		case sockaddr.VariantV4:
			return unix.AF_SMC, ProtoSMC, nil
		case sockaddr.VariantV6:
			return unix.AF_SMC, ProtoSMC6, nil
		}
	case FamilyTCP:
		switch v {
		case sockaddr.VariantV4:
			return unix.AF_INET, 0, nil
		case sockaddr.VariantV6:
			return unix.AF_INET6, 0, nil
		}
	default:
		return 0, 0, fmt.Errorf("family %d: %w", f, ErrUnknownFamily)
	}
	return 0, 0, fmt.Errorf("%s socket for %s record: %w", f, v, ErrFamilyMismatch)
}
