//go:build linux

// Package commands implements the smcecho CLI commands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dantte-lp/smcecho/internal/config"
	"github.com/dantte-lp/smcecho/internal/netio"
	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	family     string
	logLevel   string
	logFormat  string
}

// persistentKeys maps persistent flags to configuration keys.
var persistentKeys = config.FlagKeys{
	"family":     "family",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// NewRootCmd returns the smcecho command tree.
//
// Besides the check/server/client subcommands, the root command accepts
// the flag-style mode selection --check, -s/--server and -c/--client.
// When several are given, check wins over client, and client over server.
func NewRootCmd() *cobra.Command {
	var (
		g                     globalOptions
		check, server, client bool
		address, port         string
	)

	cmd := &cobra.Command{
		Use:   "smcecho",
		Short: "Echo client/server for SMC sockets",
		Long: "smcecho probes, serves and exercises AF_SMC (Shared Memory Communications) " +
			"sockets using raw bind/accept/connect syscalls.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case check:
				return runCheckCmd(cmd, &g, formatTable)
			case client:
				return runClientCmd(cmd, &g)
			case server:
				return runServerCmd(cmd, &g)
			default:
				return cmd.Help()
			}
		},
		// Silence cobra's built-in usage/error printing so we control it.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to configuration file (YAML)")
	pf.StringVar(&g.family, "family", "smc", "transport family: smc, tcp")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "text", "log format: text, json")

	f := cmd.Flags()
	f.BoolVar(&check, "check", false, "check SMC socket support")
	f.BoolVarP(&server, "server", "s", false, "run server")
	f.BoolVarP(&client, "client", "c", false, "run client")
	addEndpointFlags(f, &address, &port)

	cmd.AddCommand(checkCmd(&g))
	cmd.AddCommand(serverCmd(&g))
	cmd.AddCommand(clientCmd(&g))
	cmd.AddCommand(versionCmd())

	return cmd
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// addEndpointFlags registers -a/--address and -p/--port.
func addEndpointFlags(f *pflag.FlagSet, address, port *string) {
	f.StringVarP(address, "address", "a", "", "listen/connect address (IPv4 or IPv6 literal)")
	f.StringVarP(port, "port", "p", "", "listen/connect port")
}

// -------------------------------------------------------------------------
// Shared Setup
// -------------------------------------------------------------------------

// loadConfig layers the config file, SMCECHO_* variables and the flags
// the user set on cmd. Endpoint flags map to the section of role.
func loadConfig(cmd *cobra.Command, g *globalOptions, role sockaddr.Role, extra config.FlagKeys) (*config.Config, error) {
	section := "server"
	if role == sockaddr.RoleClient {
		section = "client"
	}

	keys := config.FlagKeys{
		"address": section + ".address",
		"port":    section + ".port",
	}
	for name, key := range persistentKeys {
		keys[name] = key
	}
	for name, key := range extra {
		keys[name] = key
	}

	cfg, err := config.Load(g.configPath, cmd.Flags(), keys)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates a structured logger writing to w.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// endpoint resolves family and address for role.
func endpoint(cfg *config.Config, role sockaddr.Role) (netio.Family, sockaddr.Record, error) {
	family, err := netio.ParseFamily(cfg.Family)
	if err != nil {
		return 0, nil, err
	}

	address, port := cfg.Server.Address, cfg.Server.Port
	if role == sockaddr.RoleClient {
		address, port = cfg.Client.Address, cfg.Client.Port
	}

	rec, err := sockaddr.Build(role, address, port)
	if err != nil {
		return 0, nil, fmt.Errorf("%s endpoint: %w", role, err)
	}
	return family, rec, nil
}
