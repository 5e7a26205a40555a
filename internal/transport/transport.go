// Package transport defines the minimal polymorphic websocket boundary the
// danmaku core depends on: connect, send/receive discrete binary messages,
// close. The core never imports a concrete websocket library directly.
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by Read when the peer has closed the connection in
// an orderly way. It is not a failure; the driver treats it like io.EOF.
var ErrClosed = errors.New("transport: closed by peer")

// Conn is the capability pair (Write, Read) the core drives half-duplex:
// within one turn it drains outbound writes, then performs exactly one read.
type Conn interface {
	// Write sends one whole binary message.
	Write(ctx context.Context, msg []byte) error
	// Read delivers the next inbound whole binary message, preserving
	// order. If ctx carries a deadline and no message arrives before it,
	// Read returns context.DeadlineExceeded. Returns ErrClosed once the
	// peer has closed the connection.
	Read(ctx context.Context) ([]byte, error)
	// Close initiates an orderly close. Idempotent.
	Close(ctx context.Context) error
}

// Dialer performs the connect handshake to a URL, returning a ready Conn.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}
