package transport

import (
	"context"
	"errors"
	"fmt"

	"nhooyr.io/websocket"
)

// WebSocketDialer is the default Dialer, binding to nhooyr.io/websocket the
// same way the gateway dials the push-channel endpoint.
type WebSocketDialer struct {
	// Origin, if set, is sent as the Origin header on the dial request.
	Origin string
}

func (d WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	opts := &websocket.DialOptions{}
	if d.Origin != "" {
		opts.HTTPHeader = map[string][]string{"Origin": {d.Origin}}
	}

	ws, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	ws.SetReadLimit(-1)
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) Write(ctx context.Context, msg []byte) error {
	if err := c.ws.Write(ctx, websocket.MessageBinary, msg); err != nil {
		return fmt.Errorf("websocket write failed: %w", err)
	}
	return nil
}

func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.ws.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var closeErr websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("websocket read failed: %w", err)
	}
	return data, nil
}

func (c *wsConn) Close(ctx context.Context) error {
	if err := c.ws.Close(websocket.StatusNormalClosure, "client exit"); err != nil {
		return fmt.Errorf("websocket close failed: %w", err)
	}
	return nil
}
