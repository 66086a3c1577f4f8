//go:build linux

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dantte-lp/smcecho/internal/config"
	"github.com/dantte-lp/smcecho/internal/echo"
	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// clientKeys maps client-only flags to configuration keys.
var clientKeys = config.FlagKeys{
	"payload": "client.payload",
	"bufsize": "client.bufsize",
}

func clientCmd(g *globalOptions) *cobra.Command {
	var (
		address, port string
		payload       string
		bufSize       int
	)

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Send one message to an echo server and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClientCmd(cmd, g)
		},
	}

	addEndpointFlags(cmd.Flags(), &address, &port)
	cmd.Flags().StringVar(&payload, "payload", echo.DefaultPayload, "message to send")
	cmd.Flags().IntVar(&bufSize, "bufsize", echo.DefaultBufSize, "reply read size in bytes")

	return cmd
}

func runClientCmd(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(cmd, g, sockaddr.RoleClient, clientKeys)
	if err != nil {
		return err
	}

	family, rec, err := endpoint(cfg, sockaddr.RoleClient)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, cmd.ErrOrStderr())
	bridge := netio.NewBridge(netio.WithLogger(logger))

	client := echo.NewClient(echo.ClientConfig{
		Family:  family,
		Address: rec,
		Payload: []byte(cfg.Client.Payload),
		BufSize: cfg.Client.BufSize,
	}, bridge, logger)

	fmt.Fprintf(cmd.OutOrStdout(), "Connecting to %s (%s)\n", rec, family)

	reply, err := client.Run()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Received: %q\n", reply)
	return nil
}
