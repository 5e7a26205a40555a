package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionStateStartsAtSeqOne(t *testing.T) {
	s := newSessionState(testToken())
	assert.Equal(t, int64(1), s.seqID)
	assert.Equal(t, time.Duration(0), s.heartbeatInterval)
}

func TestCurrentTicketReturnsIndexedTicket(t *testing.T) {
	s := newSessionState(testToken())
	assert.Equal(t, "ticket-a", s.currentTicket())
}

func TestRotateTicketWrapsModuloTicketCount(t *testing.T) {
	s := newSessionState(testToken())
	s.rotateTicket()
	assert.Equal(t, "ticket-b", s.currentTicket())
	s.rotateTicket()
	assert.Equal(t, "ticket-c", s.currentTicket())
	s.rotateTicket()
	assert.Equal(t, "ticket-a", s.currentTicket(), "ticket index must wrap around")
}

func TestNextSeqReturnsThenIncrements(t *testing.T) {
	s := newSessionState(testToken())
	first := s.nextSeq()
	second := s.nextSeq()
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(3), s.seqID)
}

func TestSetHeartbeatIntervalUsesServerValue(t *testing.T) {
	s := newSessionState(testToken())
	s.setHeartbeatInterval(5000)
	assert.Equal(t, 5*time.Second, s.heartbeatInterval)
}

func TestSetHeartbeatIntervalFallsBackToDefaultWhenNonPositive(t *testing.T) {
	s := newSessionState(testToken())
	s.setHeartbeatInterval(0)
	assert.Equal(t, defaultHeartbeatInterval, s.heartbeatInterval)

	s.setHeartbeatInterval(-1)
	assert.Equal(t, defaultHeartbeatInterval, s.heartbeatInterval)
}
