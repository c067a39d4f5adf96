// Package transport supplies the minimal concrete shape the dispatcher
// needs for a framed-packet channel (spec.md §6's "out of scope"
// external collaborator), plus a loopback implementation so the repo is
// runnable end-to-end in tests without a real VM backdoor channel.
// Grounded on gcsfuse's fuse.Server/fuse.Connection boundary
// (jacobsa/fuse): an opaque framed request/response channel behind an
// interface, reimplemented here without the FUSE kernel dependency since
// this server's channel is VM-specific, not a local mount.
package transport

import (
	"errors"

	"github.com/google/uuid"
)

// ErrClosed is returned by Receive once the transport has been closed and
// no more packets will ever arrive.
var ErrClosed = errors.New("transport: closed")

// SessionRef identifies which session a received packet belongs to, and
// which session a reply should be routed back to.
type SessionRef = uuid.UUID

// Transport is the channel the dispatcher's driving loop reads requests
// from and writes replies to. A real deployment backs this with a vsock
// or HGFS backdoor channel; original_source's HgfsTransportSessionOps
// plays the analogous role there.
type Transport interface {
	Receive() ([]byte, SessionRef, error)
	Send(ref SessionRef, packet []byte) error
	Close() error
}

// Loopback is an in-process Transport: packets submitted via Submit are
// delivered to Receive, and replies sent via Send are collected for the
// test to read back with Sent. It exists purely so end-to-end tests (and
// the dispatcher) can run without a real guest channel.
type Loopback struct {
	inbox  chan loopbackPacket
	outbox chan loopbackPacket
	closed chan struct{}
}

type loopbackPacket struct {
	ref  SessionRef
	data []byte
}

func NewLoopback() *Loopback {
	return &Loopback{
		inbox:  make(chan loopbackPacket, 64),
		outbox: make(chan loopbackPacket, 64),
		closed: make(chan struct{}),
	}
}

// Submit enqueues a packet as if it had arrived from the guest under
// session ref.
func (l *Loopback) Submit(ref SessionRef, packet []byte) {
	select {
	case l.inbox <- loopbackPacket{ref: ref, data: packet}:
	case <-l.closed:
	}
}

func (l *Loopback) Receive() ([]byte, SessionRef, error) {
	select {
	case p := <-l.inbox:
		return p.data, p.ref, nil
	case <-l.closed:
		return nil, SessionRef{}, ErrClosed
	}
}

func (l *Loopback) Send(ref SessionRef, packet []byte) error {
	select {
	case l.outbox <- loopbackPacket{ref: ref, data: packet}:
		return nil
	case <-l.closed:
		return ErrClosed
	}
}

// Sent blocks for the next reply a handler sent via Send, for test
// assertions to inspect.
func (l *Loopback) Sent() ([]byte, SessionRef, error) {
	select {
	case p := <-l.outbox:
		return p.data, p.ref, nil
	case <-l.closed:
		return nil, SessionRef{}, ErrClosed
	}
}

func (l *Loopback) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}
