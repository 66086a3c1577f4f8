//go:build linux

package netio

import (
	"errors"

	"github.com/dantte-lp/smcecho/internal/sockaddr"
)

// Listen creates a socket in family f for rec's variant, binds it to rec
// and starts listening with DefaultBacklog. The handle is released on
// every failure path.
func (b *Bridge) Listen(f Family, rec sockaddr.Record) (*Handle, error) {
	h, err := b.Open(f, rec.Variant())
	if err != nil {
		return nil, err
	}
	if err := b.BindRaw(h, rec); err != nil {
		return nil, closeOnError(h, err)
	}
	if err := b.ListenRaw(h, DefaultBacklog); err != nil {
		return nil, closeOnError(h, err)
	}
	return h, nil
}

// Dial creates a socket in family f for rec's variant and connects it
// to rec. The handle is released if the connect fails.
func (b *Bridge) Dial(f Family, rec sockaddr.Record) (*Handle, error) {
	h, err := b.Open(f, rec.Variant())
	if err != nil {
		return nil, err
	}
	if err := b.ConnectRaw(h, rec); err != nil {
		return nil, closeOnError(h, err)
	}
	return h, nil
}

// Check probes kernel support for family f: it creates a socket, binds
// it to rec and releases it. No data is exchanged. A nil return means
// the socket family and protocol are registered and bind works.
func (b *Bridge) Check(f Family, rec sockaddr.Record) error {
	h, err := b.Open(f, rec.Variant())
	if err != nil {
		return err
	}
	bindErr := b.BindRaw(h, rec)
	if closeErr := h.Close(); closeErr != nil {
		return errors.Join(bindErr, closeErr)
	}
	return bindErr
}
