//go:build linux

package netio_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// requireFamily skips the test when the running kernel cannot create
// sockets of family f for variant v.
func requireFamily(t *testing.T, b *netio.Bridge, f netio.Family, v sockaddr.Variant) {
	t.Helper()

	h, err := b.Open(f, v)
	if err != nil {
		t.Skipf("%s %s sockets unavailable: %v", f, v, err)
	}
	require.NoError(t, h.Close())
}

// listenLoopback binds an ephemeral loopback port and returns the
// listening handle with its actual local address.
func listenLoopback(t *testing.T, b *netio.Bridge, f netio.Family, address string) (*netio.Handle, sockaddr.Record) {
	t.Helper()

	ln, err := b.Listen(f, mustParse(t, address, 0))
	if errors.Is(err, unix.EADDRNOTAVAIL) {
		t.Skipf("%s not configured: %v", address, err)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	local, err := b.LocalRecord(ln)
	require.NoError(t, err)
	require.NotZero(t, local.Port())
	return ln, local
}

// echoOnce accepts one connection on ln and echoes until EOF.
func echoOnce(b *netio.Bridge, ln *netio.Handle) <-chan error {
	done := make(chan error, 1)
	go func() {
		conn, _, err := b.AcceptRaw(ln)
		if err != nil {
			done <- err
			return
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if errors.Is(err, io.EOF) {
				done <- nil
				return
			}
			if err != nil {
				done <- err
				return
			}
			if _, err := conn.Write(buf[:n]); err != nil {
				done <- err
				return
			}
		}
	}()
	return done
}

func testLoopbackEcho(t *testing.T, f netio.Family, address string) {
	t.Helper()

	b := netio.NewBridge()
	ln, local := listenLoopback(t, b, f, address)
	done := echoOnce(b, ln)

	conn, err := b.Dial(f, local)
	require.NoError(t, err)

	payload := []byte("Hello, world")
	_, err = conn.Write(payload)
	require.NoError(t, err)

	got := make([]byte, len(payload))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	peer, err := b.LocalRecord(conn)
	require.NoError(t, err)
	assert.Equal(t, local.Variant(), peer.Variant())

	require.NoError(t, conn.Close())
	require.NoError(t, <-done)
}

func TestLoopbackEchoTCP(t *testing.T) {
	t.Parallel()

	t.Run("v4", func(t *testing.T) {
		t.Parallel()
		testLoopbackEcho(t, netio.FamilyTCP, "127.0.0.1")
	})

	t.Run("v6", func(t *testing.T) {
		t.Parallel()
		b := netio.NewBridge()
		requireFamily(t, b, netio.FamilyTCP, sockaddr.VariantV6)
		testLoopbackEcho(t, netio.FamilyTCP, "::1")
	})
}

func TestLoopbackEchoSMC(t *testing.T) {
	t.Parallel()

	t.Run("v4", func(t *testing.T) {
		t.Parallel()
		b := netio.NewBridge()
		requireFamily(t, b, netio.FamilySMC, sockaddr.VariantV4)
		testLoopbackEcho(t, netio.FamilySMC, "127.0.0.1")
	})

	t.Run("v6", func(t *testing.T) {
		t.Parallel()
		b := netio.NewBridge()
		requireFamily(t, b, netio.FamilySMC, sockaddr.VariantV6)
		testLoopbackEcho(t, netio.FamilySMC, "::1")
	})
}

func TestConnectRefusedTCP(t *testing.T) {
	t.Parallel()

	b := netio.NewBridge()

	// Reserve a port, then release it so nothing listens there.
	ln, local := listenLoopback(t, b, netio.FamilyTCP, "127.0.0.1")
	require.NoError(t, ln.Close())

	conn, err := b.Dial(netio.FamilyTCP, local)
	require.ErrorIs(t, err, netio.ErrConnectFailed)
	require.ErrorIs(t, err, unix.ECONNREFUSED)
	assert.Nil(t, conn)
}

func TestCheckTCP(t *testing.T) {
	t.Parallel()

	b := netio.NewBridge()
	require.NoError(t, b.Check(netio.FamilyTCP, mustParse(t, "127.0.0.1", 0)))
}

func TestBindInUseTCP(t *testing.T) {
	t.Parallel()

	b := netio.NewBridge()
	_, local := listenLoopback(t, b, netio.FamilyTCP, "127.0.0.1")

	err := b.Check(netio.FamilyTCP, local)
	require.ErrorIs(t, err, netio.ErrBindFailed)
	require.ErrorIs(t, err, unix.EADDRINUSE)
}
