// Package sockaddr builds byte-exact socket address records for the
// SMC echo tool.
//
// A [Record] is either a [V4] (native struct sockaddr_in) or a [V6]
// (native struct sockaddr_in6). SMC sockets reuse the inet address
// layouts, so the records produced here are what the kernel expects on
// bind(2) and connect(2) for AF_SMC. All knowledge of the host byte
// layout lives in the layout files of this package; the rest of the
// module handles records only through [Marshal] and [Unmarshal].
package sockaddr
