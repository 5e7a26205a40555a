// Package faketransport provides a scripted in-memory transport.Conn for
// tests: a fixed queue of inbound messages and a recorder of every outbound
// write, substituting for a real websocket per the core's design note on
// transport substitutability.
package faketransport

import (
	"context"
	"sync"

	"github.com/riverlink/danmaku-go/internal/transport"
)

// Scripted is a transport.Conn backed by a canned inbound queue. Reads
// block (respecting ctx deadlines) until a scripted message is pushed via
// Push, or Close is called, in which case pending and future Reads return
// transport.ErrClosed once the queue drains.
type Scripted struct {
	mu      sync.Mutex
	inbound [][]byte
	notify  chan struct{}
	closed  bool

	Written [][]byte
}

func NewScripted(messages ...[]byte) *Scripted {
	return &Scripted{
		inbound: append([][]byte{}, messages...),
		notify:  make(chan struct{}, 1),
	}
}

// Push enqueues an additional inbound message, waking any blocked Read.
func (s *Scripted) Push(msg []byte) {
	s.mu.Lock()
	s.inbound = append(s.inbound, msg)
	s.mu.Unlock()
	s.wake()
}

func (s *Scripted) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Scripted) Write(ctx context.Context, msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte(nil), msg...)
	s.Written = append(s.Written, cp)
	return nil
}

func (s *Scripted) Read(ctx context.Context) ([]byte, error) {
	for {
		s.mu.Lock()
		if len(s.inbound) > 0 {
			msg := s.inbound[0]
			s.inbound = s.inbound[1:]
			s.mu.Unlock()
			return msg, nil
		}
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return nil, transport.ErrClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.notify:
		}
	}
}

func (s *Scripted) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
	return nil
}

// WrittenCount returns the number of frames written so far.
func (s *Scripted) WrittenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Written)
}
