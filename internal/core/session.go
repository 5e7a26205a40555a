package core

import "time"

const defaultHeartbeatInterval = 10 * time.Second

// sessionState is owned exclusively by the machine; no locks, no globals,
// per the single-threaded cooperative model this package implements.
type sessionState struct {
	token DanmakuToken

	appID      int32
	instanceID int64
	sessionKey []byte // nil until RegisterResponse arrives

	seqID          int64
	headerSeqID    int64
	heartbeatSeqID int64
	ticketIndex    int

	heartbeatInterval time.Duration
	lastHeartbeatTime time.Time
}

func newSessionState(token DanmakuToken) *sessionState {
	return &sessionState{
		token:             token,
		seqID:             1,
		heartbeatInterval: 0,
	}
}

func (s *sessionState) currentTicket() string {
	return s.token.Tickets[s.ticketIndex]
}

func (s *sessionState) rotateTicket() {
	s.ticketIndex = (s.ticketIndex + 1) % len(s.token.Tickets)
}

func (s *sessionState) nextSeq() int64 {
	v := s.seqID
	s.seqID++
	return v
}

func (s *sessionState) setHeartbeatInterval(ms int64) {
	if ms <= 0 {
		s.heartbeatInterval = defaultHeartbeatInterval
		return
	}
	s.heartbeatInterval = time.Duration(ms) * time.Millisecond
}
