//go:build linux

package echo

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// ClientConfig describes one client exchange.
type ClientConfig struct {
	// Family is the transport family to connect in.
	Family netio.Family

	// Address is the server endpoint.
	Address sockaddr.Record

	// Payload is sent once. Empty means DefaultPayload.
	Payload []byte

	// BufSize bounds the reply read. Zero means DefaultBufSize.
	BufSize int
}

// Client connects, sends one payload and reads one reply chunk.
type Client struct {
	cfg    ClientConfig
	bridge *netio.Bridge
	logger *slog.Logger
}

// NewClient returns a Client.
func NewClient(cfg ClientConfig, bridge *netio.Bridge, logger *slog.Logger) *Client {
	if len(cfg.Payload) == 0 {
		cfg.Payload = []byte(DefaultPayload)
	}
	return &Client{
		cfg:    cfg,
		bridge: bridge,
		logger: logger.With(
			slog.String("component", "echo.client"),
			slog.String("family", cfg.Family.String()),
		),
	}
}

// Run performs the exchange and returns the reply. The connected handle
// is released before Run returns.
func (c *Client) Run() (reply []byte, err error) {
	conn, err := c.bridge.Dial(c.cfg.Family, c.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.cfg.Address, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	c.logger.Info("connected", slog.String("addr", c.cfg.Address.String()))

	reply, err = Exchange(conn, c.cfg.Payload, c.cfg.BufSize)
	if err != nil {
		return nil, fmt.Errorf("exchange with %s: %w", c.cfg.Address, err)
	}

	c.logger.Debug("reply received", slog.Int("bytes", len(reply)))
	return reply, nil
}
