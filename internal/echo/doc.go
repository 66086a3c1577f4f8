// Package echo runs the single-connection echo exchange on top of
// netio handles: the server echoes byte-for-byte until the peer closes,
// the client sends one payload and reads one reply chunk.
package echo
