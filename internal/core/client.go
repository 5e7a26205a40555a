package core

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/riverlink/danmaku-go/internal/transport"
)

// DanmakuServerURL is the default push-channel endpoint.
const DanmakuServerURL = "wss://link.xiatou.com/"

// driverState enumerates the client's single-threaded cooperative state
// machine: BeforeRegister -> Registering -> Registered -> Closing -> Closed.
type driverState int

const (
	stateBeforeRegister driverState = iota
	stateRegistering
	stateRegistered
	stateClosing
	stateClosed
)

// Client is a connected danmaku push-channel session. It is not safe for
// concurrent use: one logical task owns it end to end.
type Client struct {
	conn    transport.Conn
	machine *machine
	logger  *zap.SugaredLogger

	state   driverState
	outbox  []outboundKind
	lastErr error
}

// NewClient validates token, dials dialer at DanmakuServerURL (or url if
// non-empty), and returns a Client ready for Next. Fails synchronously with
// a KindInvalidToken error if token.IsValid() is false — no transport
// connect is attempted in that case.
func NewClient(ctx context.Context, token DanmakuToken, dialer transport.Dialer, url string, logger *zap.SugaredLogger) (*Client, error) {
	if !token.IsValid() {
		return nil, newError(KindInvalidToken, "danmaku token is missing required fields", nil)
	}
	if url == "" {
		url = DanmakuServerURL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	conn, err := dialer.Dial(ctx, url)
	if err != nil {
		return nil, wrapf(KindTransportConnect, err, "dial danmaku server")
	}

	m := newMachine(token)
	m.logger = logger
	c := &Client{
		conn:    conn,
		machine: m,
		logger:  logger,
		state:   stateBeforeRegister,
	}
	return c, nil
}

// Next returns the next decoded Signals batch, blocking as needed to drive
// the handshake, heartbeat schedule, and server reads. It returns io.EOF
// once the session has terminated in any way (orderly close, server close,
// error_code 10018, or explicit Close). Any other error is terminal: the
// client transitions to Closed and subsequent Next calls return io.EOF.
func (c *Client) Next(ctx context.Context) (Signals, error) {
	for {
		switch c.state {
		case stateBeforeRegister:
			if err := c.enqueueAndFlush(ctx, outboundRegister); err != nil {
				return Signals{}, c.fail(err)
			}
			c.state = stateRegistering

		case stateRegistering:
			msg, err := c.conn.Read(ctx)
			if err != nil {
				return Signals{}, c.fail(c.classifyTransportErr(err))
			}
			decoded, err := c.machine.decode(msg)
			if err != nil {
				return Signals{}, c.fail(err)
			}
			event, err := c.machine.classify(decoded.Payload)
			if err != nil {
				return Signals{}, c.fail(err)
			}
			if event.Kind != inboundRegisterResponse {
				return Signals{}, c.fail(newError(KindRegisterError, "expected RegisterResponse during handshake", nil))
			}
			c.outbox = append(c.outbox, outboundKeepAlive, outboundEnterRoom)
			c.machine.state.lastHeartbeatTime = time.Now()
			c.state = stateRegistered

		case stateRegistered:
			batch, done, err := c.stepRegistered(ctx)
			if err != nil {
				return Signals{}, c.fail(err)
			}
			if done {
				return batch, nil
			}
			// else: loop, no batch surfaced this iteration

		case stateClosing:
			for _, kind := range c.outbox {
				if err := c.send(ctx, kind); err != nil {
					c.logger.Debugw("write during orderly close failed, ignoring", "err", err)
				}
			}
			c.outbox = nil
			_ = c.conn.Close(ctx)
			c.state = stateClosed
			return Signals{}, io.EOF

		case stateClosed:
			return Signals{}, io.EOF
		}
	}
}

// stepRegistered performs one iteration of the Registered steady state per
// spec 4.D. Returns (batch, true, nil) when a batch should be surfaced to
// the caller, (zero, false, nil) to continue looping, or an error.
func (c *Client) stepRegistered(ctx context.Context) (Signals, bool, error) {
	now := time.Now()
	st := c.machine.state
	if st.heartbeatInterval > 0 {
		sinceLast := now.Sub(st.lastHeartbeatTime)
		if sinceLast >= 0 && sinceLast >= st.heartbeatInterval {
			c.outbox = append(c.outbox, outboundHeartbeat)
			// build(outboundHeartbeat) increments heartbeatSeqID only once the
			// frame is actually sent, so the interleave check here must look at
			// the post-increment value it hasn't reached yet: heartbeatSeqID+1.
			if (st.heartbeatSeqID+1)%5 == 4 {
				c.outbox = append(c.outbox, outboundKeepAlive)
			}
			st.lastHeartbeatTime = now
		}
	}

	for len(c.outbox) > 0 {
		kind := c.outbox[0]
		c.outbox = c.outbox[1:]
		if err := c.send(ctx, kind); err != nil {
			return Signals{}, false, err
		}
	}

	readCtx := ctx
	var cancel context.CancelFunc
	if st.heartbeatInterval > 0 {
		remaining := st.heartbeatInterval - now.Sub(st.lastHeartbeatTime)
		if remaining < 0 {
			remaining = 0
		}
		readCtx, cancel = context.WithTimeout(ctx, remaining)
		defer cancel()
	}

	msg, err := c.conn.Read(readCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && readCtx.Err() != nil && ctx.Err() == nil {
			return Signals{}, false, nil
		}
		return Signals{}, false, c.classifyTransportErr(err)
	}

	decoded, err := c.machine.decode(msg)
	if err != nil {
		return Signals{}, false, err
	}
	event, err := c.machine.classify(decoded.Payload)
	if err != nil {
		return Signals{}, false, err
	}

	switch event.Kind {
	case inboundSignals:
		c.outbox = append(c.outbox, outboundPushAck)
		return event.Signals, true, nil
	case inboundRegisterResponse:
		c.logger.Warnw("registered more than once, ignoring")
		return Signals{}, false, nil
	case inboundInterval:
		c.machine.state.setHeartbeatInterval(event.IntervalMs)
		return Signals{}, false, nil
	case inboundPushMessage:
		c.outbox = append(c.outbox, outboundPushAck)
		return Signals{}, false, nil
	case inboundEnterRoom:
		c.outbox = append(c.outbox, outboundPushAck, outboundEnterRoom)
		return Signals{}, false, nil
	case inboundPushAndStop:
		c.outbox = append(c.outbox, outboundPushAck, outboundUserExit, outboundUnregister)
		c.state = stateClosing
		return Signals{}, false, nil
	case inboundStop:
		c.outbox = append(c.outbox, outboundUserExit, outboundUnregister)
		c.state = stateClosing
		return Signals{}, false, nil
	case inboundClose:
		c.state = stateClosing
		return Signals{}, false, nil
	case inboundNoop:
		return Signals{}, false, nil
	}
	return Signals{}, false, nil
}

// Close triggers an orderly close: at most one ZtLiveCsUserExit and one
// UnregisterRequest are sent, in that order, followed by transport close.
// A no-op once the client is already Closed.
func (c *Client) Close(ctx context.Context) error {
	if c.state == stateClosed {
		return nil
	}
	if c.state == stateBeforeRegister || c.state == stateRegistering {
		c.state = stateClosed
		return c.conn.Close(ctx)
	}
	c.outbox = append(c.outbox, outboundUserExit, outboundUnregister)
	c.state = stateClosing
	for _, kind := range c.outbox {
		if err := c.send(ctx, kind); err != nil {
			c.logger.Debugw("write during explicit close failed, ignoring", "err", err)
		}
	}
	c.outbox = nil
	c.state = stateClosed
	return c.conn.Close(ctx)
}

func (c *Client) send(ctx context.Context, kind outboundKind) error {
	frame, err := c.machine.build(kind)
	if err != nil {
		return err
	}
	wire, err := c.machine.encode(frame)
	if err != nil {
		return err
	}
	if err := c.conn.Write(ctx, wire); err != nil {
		return wrapf(KindTransportWrite, err, "write frame")
	}
	return nil
}

func (c *Client) enqueueAndFlush(ctx context.Context, kind outboundKind) error {
	return c.send(ctx, kind)
}

func (c *Client) classifyTransportErr(err error) error {
	if errors.Is(err, transport.ErrClosed) {
		return newError(KindPeerClosed, "peer closed the connection", err)
	}
	return wrapf(KindTransportRead, err, "read frame")
}

func (c *Client) fail(err error) error {
	c.lastErr = err
	c.state = stateClosed
	_ = c.conn.Close(context.Background())
	return err
}
