//go:build linux

// Command smcecho is a diagnostic echo client/server for SMC sockets.
//
// Usage:
//
//	smcecho check [-a address] [-p port] [--format table|json|yaml]
//	smcecho server [-a address] [-p port] [--metrics-addr :9100]
//	smcecho client [-a address] [-p port] [--payload text]
//	smcecho --check | -s | -c [-a address] [-p port]
package main

import "github.com/dantte-lp/smcecho/cmd/smcecho/commands"

func main() {
	commands.Execute()
}
