//go:build linux

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// errCheckFailed is returned when the capability probe fails.
var errCheckFailed = errors.New("socket check failed")

func checkCmd(g *globalOptions) *cobra.Command {
	var (
		address, port string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that sockets of the selected family can be created and bound",
		Long: "check creates a socket, binds it to the listen address and closes it again. " +
			"It exits non-zero when the kernel lacks support for the family.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckCmd(cmd, g, format)
		},
	}

	addEndpointFlags(cmd.Flags(), &address, &port)
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json, yaml")

	return cmd
}

func runCheckCmd(cmd *cobra.Command, g *globalOptions, format string) error {
	cfg, err := loadConfig(cmd, g, sockaddr.RoleServer, nil)
	if err != nil {
		return err
	}

	family, rec, err := endpoint(cfg, sockaddr.RoleServer)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, cmd.ErrOrStderr())
	bridge := netio.NewBridge(netio.WithLogger(logger))

	report := checkReport{
		Family:  family.String(),
		Variant: rec.Variant().String(),
		Address: rec.String(),
	}

	checkErr := bridge.Check(family, rec)
	if checkErr == nil {
		report.Supported = true
	} else {
		report.Error = checkErr.Error()
		var se *netio.SyscallError
		if errors.As(checkErr, &se) {
			report.Op = se.Op
		}
	}

	out, err := formatReport(report, format)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	if checkErr != nil {
		return fmt.Errorf("%w: %w", errCheckFailed, checkErr)
	}
	return nil
}
