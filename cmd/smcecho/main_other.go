//go:build !linux

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "Error: smcecho requires Linux (AF_SMC sockets)")
	os.Exit(1)
}
