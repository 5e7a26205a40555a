package core

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dproto "github.com/riverlink/danmaku-go/internal/proto"
	"github.com/riverlink/danmaku-go/internal/transport"
	"github.com/riverlink/danmaku-go/internal/transport/faketransport"
)

func testSecurityKey() []byte {
	key, _ := decodeSecurityKey(testToken().SecurityKey)
	return key
}

func testSessionKey() []byte {
	return []byte("0123456789abcdef")
}

func encodeDownstream(t *testing.T, mode dproto.EncryptionMode, key []byte, seqID int64, command string, inner []byte) []byte {
	t.Helper()
	plaintext := (&dproto.DownstreamPayload{Command: command, SeqID: seqID, PayloadData: inner}).Marshal()
	header := &dproto.PacketHeader{EncryptionMode: mode, SeqID: seqID}
	frame, err := encodeFrame(header, plaintext, key)
	require.NoError(t, err)
	return frame
}

func newTestClient(conn transport.Conn, token DanmakuToken, state driverState) *Client {
	m := newMachine(token)
	m.logger = zap.NewNop().Sugar()
	return &Client{
		conn:    conn,
		machine: m,
		logger:  zap.NewNop().Sugar(),
		state:   state,
	}
}

func TestClientHandshakeThroughFirstSignalBatch(t *testing.T) {
	token := testToken()
	securityKey := testSecurityKey()
	sessionKey := testSessionKey()

	registerFrame := encodeDownstream(t, dproto.EncryptionServiceToken, securityKey, 1,
		commandRegister, (&dproto.RegisterResponse{InstanceID: 999, SessKey: sessionKey}).Marshal())

	enterRoomAck := &dproto.ZtLiveCsCmdAck{
		CmdAckType: "ZtLiveCsEnterRoomAck",
		Payload:    (&dproto.ZtLiveCsEnterRoomAck{HeartbeatIntervalMs: 0}).Marshal(),
	}
	ackFrame := encodeDownstream(t, dproto.EncryptionSessionKey, sessionKey, 2, commandCsCmd, enterRoomAck.Marshal())

	comment := (&dproto.CommonActionSignalComment{UserID: 1, UserName: "bob", Content: "hello", SendTimeMs: 1}).Marshal()
	scMsg := &dproto.ZtLiveScMessage{MessageType: "ZtLiveScActionSignal", Payload: buildEnvelope("CommonActionSignalComment", comment)}
	pushFrame := encodeDownstream(t, dproto.EncryptionSessionKey, sessionKey, 3, commandPushMsg, scMsg.Marshal())

	conn := faketransport.NewScripted(registerFrame, ackFrame, pushFrame)
	client := newTestClient(conn, token, stateBeforeRegister)

	sig, err := client.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, sig.Actions, 1)
	assert.Equal(t, "hello", sig.Actions[0].Comment.Content)

	assert.Equal(t, stateRegistered, client.state)
	assert.Equal(t, 3, conn.WrittenCount(), "register, keep-alive, and enter-room should have been written")
	assert.Equal(t, defaultHeartbeatInterval, client.machine.state.heartbeatInterval,
		"a zero-valued heartbeat interval from the server falls back to the default")
}

func TestClientFailsHandshakeWhenFirstMessageIsNotRegisterResponse(t *testing.T) {
	token := testToken()
	securityKey := testSecurityKey()
	notRegister := encodeDownstream(t, dproto.EncryptionServiceToken, securityKey, 1, commandKeepAlive, nil)

	conn := faketransport.NewScripted(notRegister)
	client := newTestClient(conn, token, stateBeforeRegister)

	_, err := client.Next(context.Background())
	require.Error(t, err)
	var coreErr *Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, KindRegisterError, coreErr.Kind)
	assert.Equal(t, stateClosed, client.state)
}

func TestClientPeerClosedDuringHandshakeSurfacesPeerClosedError(t *testing.T) {
	conn := faketransport.NewScripted()
	_ = conn.Close(context.Background())
	client := newTestClient(conn, testToken(), stateBeforeRegister)

	_, err := client.Next(context.Background())
	require.Error(t, err)
	var coreErr *Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, KindPeerClosed, coreErr.Kind)
}

func TestClientNextAfterClosedReturnsEOF(t *testing.T) {
	conn := faketransport.NewScripted()
	client := newTestClient(conn, testToken(), stateClosed)

	_, err := client.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestCloseFromRegisteredSendsUserExitThenUnregister(t *testing.T) {
	token := testToken()
	sessionKey := testSessionKey()
	conn := faketransport.NewScripted()
	client := newTestClient(conn, token, stateRegistered)
	client.machine.state.sessionKey = sessionKey

	err := client.Close(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stateClosed, client.state)
	require.Equal(t, 2, conn.WrittenCount())

	first, err := decodeFrame(conn.Written[0], nil, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, commandCsCmd, first.Payload.Command)

	second, err := decodeFrame(conn.Written[1], nil, sessionKey)
	require.NoError(t, err)
	assert.Equal(t, commandUnregister, second.Payload.Command)
}

func TestCloseBeforeRegisterSendsNoFrames(t *testing.T) {
	conn := faketransport.NewScripted()
	client := newTestClient(conn, testToken(), stateBeforeRegister)

	err := client.Close(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stateClosed, client.state)
	assert.Equal(t, 0, conn.WrittenCount())
}

// TestKeepAliveInterleavesOnFourthHeartbeatCycle drives five heartbeat
// cycles through Client.Next and checks that the interleaved
// Basic.KeepAlive request lands on the cycle where heartbeatSeqID becomes 4
// after incrementing (the 4th cycle), not the 5th.
func TestKeepAliveInterleavesOnFourthHeartbeatCycle(t *testing.T) {
	token := testToken()
	sessionKey := testSessionKey()

	comment := (&dproto.CommonActionSignalComment{UserID: 1, UserName: "bob", Content: "hi", SendTimeMs: 1}).Marshal()
	scMsg := &dproto.ZtLiveScMessage{MessageType: "ZtLiveScActionSignal", Payload: buildEnvelope("CommonActionSignalComment", comment)}

	frames := make([][]byte, 0, 5)
	for i := int64(0); i < 5; i++ {
		frames = append(frames, encodeDownstream(t, dproto.EncryptionSessionKey, sessionKey, i+10, commandPushMsg, scMsg.Marshal()))
	}

	conn := faketransport.NewScripted(frames...)
	client := newTestClient(conn, token, stateRegistered)
	client.machine.state.sessionKey = sessionKey
	client.machine.state.heartbeatInterval = time.Hour
	client.machine.state.lastHeartbeatTime = time.Now()

	keepAliveCycles := make([]bool, 0, 5)
	for i := 0; i < 5; i++ {
		client.machine.state.lastHeartbeatTime = time.Now().Add(-2 * time.Hour)
		before := conn.WrittenCount()
		_, err := client.Next(context.Background())
		require.NoError(t, err)

		sawKeepAlive := false
		for _, written := range conn.Written[before:] {
			decoded, err := decodeFrame(written, nil, sessionKey)
			require.NoError(t, err)
			if decoded.Payload.Command == commandKeepAlive {
				sawKeepAlive = true
			}
		}
		keepAliveCycles = append(keepAliveCycles, sawKeepAlive)
	}

	assert.Equal(t, []bool{false, false, false, true, false}, keepAliveCycles)
}

func TestCloseIsIdempotentOnceClosed(t *testing.T) {
	conn := faketransport.NewScripted()
	client := newTestClient(conn, testToken(), stateClosed)

	err := client.Close(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, conn.WrittenCount())
}
