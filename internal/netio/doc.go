// Package netio creates SMC sockets and drives bind, listen, accept and
// connect as raw syscalls.
//
// The Linux implementation passes sockaddr.Record bytes straight to
// bind(2), accept4(2) and connect(2) through golang.org/x/sys/unix, so
// AF_SMC sockets (and, for comparison, plain TCP sockets) are set up
// without the standard library's family-aware wrappers. The OS surface
// is the Syscalls interface; tests substitute a fake to inject errno
// values.
package netio
